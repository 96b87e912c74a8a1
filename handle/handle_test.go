package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandle_String(t *testing.T) {
	assert.Equal(t, "V3", VertexHandle(3).String())
	assert.Equal(t, "E0", EdgeHandle(0).String())
	assert.Equal(t, "F12", FaceHandle(12).String())
	assert.Equal(t, "H7", HalfEdgeHandle(7).String())
	assert.Equal(t, "C(none)", NoCluster.String())
}

func TestHandle_IsValid(t *testing.T) {
	assert.True(t, VertexHandle(0).IsValid())
	assert.False(t, NoVertex.IsValid())
	assert.False(t, NoFace.IsValid())
	assert.Equal(t, uint32(42), FaceHandle(42).Idx())
}
