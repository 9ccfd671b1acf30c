package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppConfigValidate(t *testing.T) {
	valid := AppConfig{MembersLimit: 9, QueueLimit: 25, RoomCodeLength: 6}
	assert.NoError(t, valid.Validate())

	noMembers := valid
	noMembers.MembersLimit = 0
	assert.Error(t, noMembers.Validate())

	noQueue := valid
	noQueue.QueueLimit = 0
	assert.Error(t, noQueue.Validate())

	shortCode := valid
	shortCode.RoomCodeLength = 2
	assert.Error(t, shortCode.Validate())
}
