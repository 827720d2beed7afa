package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
}

type ideaForm struct {
	Title string   `json:"title" validate:"required"`
	Tags  []string `json:"tags" validate:"min=1,dive,category"`
}

func TestToDetails_FieldMessages(t *testing.T) {
	v := New()

	err := v.Struct(signup{Email: "nope", Password: "123"})
	require.Error(t, err)

	d := ToDetails(err)
	assert.Equal(t, "must be a valid email", d["email"])
	assert.Equal(t, "must be at least 6 characters long", d["password"])
}

func TestCategoryValidation(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(ideaForm{Title: "x", Tags: []string{"science", "Health"}}))

	err := v.Struct(ideaForm{Title: "x", Tags: []string{"science", "astrology"}})
	require.Error(t, err)
	d := ToDetails(err)
	assert.Contains(t, d["tags[1]"], "must be one of")

	err = v.Struct(ideaForm{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, "must contain at least 1 item(s)", ToDetails(err)["tags"])
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte("{"), &dst)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}
