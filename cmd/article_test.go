package cmd

import (
	"testing"

	"github.com/lexhist/lexhist/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestShortHash(t *testing.T) {
	full := model.HashText("some article text")
	assert.Equal(t, full[:12], shortHash(full))
	assert.Equal(t, "", shortHash(""))
	assert.Equal(t, "abc", shortHash("abc"))
}
