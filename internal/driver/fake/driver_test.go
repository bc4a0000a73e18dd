package fake

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/scenereel/internal/render"
)

func TestDriverSummary(t *testing.T) {
	var out bytes.Buffer
	d := &Driver{Out: &out}
	require.NoError(t, d.Write([]render.Color{{R: 1}, {}}))
	assert.Equal(t, "[frame 0001] lit=1/2 avg=(0.50,0.00,0.00)\n", out.String())
}
