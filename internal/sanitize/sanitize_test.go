package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	cases := map[string]string{
		"":                                       "",
		"  plain  ":                              "plain",
		"<b>Bold</b> move":                       "Bold move",
		"Mac & cheese":                           "Mac & cheese",
		`<script>alert("x")</script>Soup`:        "Soup",
		`<a href="javascript:void(0)">link</a>`:  "link",
	}
	for in, want := range cases {
		assert.Equal(t, want, Text(in), "input %q", in)
	}
}

func TestOptionalText(t *testing.T) {
	assert.Nil(t, OptionalText(nil))

	blank := "   "
	assert.Nil(t, OptionalText(&blank))

	tagsOnly := "<br/>"
	assert.Nil(t, OptionalText(&tagsOnly))

	v := " Weeknight rotation "
	got := OptionalText(&v)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Weeknight rotation", *got)
	}
}

func TestLines(t *testing.T) {
	got := Lines([]string{"2 eggs", "  ", "<i>1 cup</i> flour"})
	assert.Equal(t, []string{"2 eggs", "1 cup flour"}, got)
}
