package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiInstanceBodyId(t *testing.T) {
	assert := assert.New(t)

	bodyId := MultiInstanceBodyId("serviceTask")
	assert.Equal("serviceTask#multiInstanceBody", bodyId)

	assert.True(IsMultiInstanceBodyId(bodyId))
	assert.False(IsMultiInstanceBodyId("serviceTask"))

	assert.Equal("serviceTask", InnerActivityId(bodyId))
	assert.Equal("serviceTask", InnerActivityId("serviceTask"))
}

func TestIsRecorded(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsRecorded(ActivityServiceTask))
	assert.True(IsRecorded(ActivityBoundaryTimer))
	assert.True(IsRecorded(ActivityMultiInstanceBody))
	assert.False(IsRecorded(ActivityBoundaryCompensation))
}
