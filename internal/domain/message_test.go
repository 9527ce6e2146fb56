package domain

import (
	"testing"

	"github.com/mingle/mingle-backend/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageConstructors(t *testing.T) {
	_, err := NewTextMessage(1, 2, "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	msg, err := NewTextMessage(1, 2, "hi")
	require.NoError(t, err)
	assert.Equal(t, TypeText, msg.Type)
	assert.Equal(t, "hi", *msg.Content)
	assert.Nil(t, msg.MediaURL)
	assert.Nil(t, msg.GiftID)

	_, err = NewMediaMessage(1, 2, TypeImage, MediaAttachment{}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewMediaMessage(1, 2, TypeText, MediaAttachment{URL: "x"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	duration := 9
	voice, err := NewMediaMessage(1, 2, TypeAudio, MediaAttachment{
		URL:      "https://cdn.example.com/v.ogg",
		Duration: &duration,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, TypeAudio, voice.Type)
	assert.Equal(t, 9, *voice.MediaDuration)

	card := NewBusinessCardMessage(1, 2)
	require.NotNil(t, card.BusinessCardSubjectID)
	assert.Equal(t, uint64(2), *card.BusinessCardSubjectID)
}

func TestNewForwardedCopy(t *testing.T) {
	caption := "look"
	original, err := NewMediaMessage(1, 2, TypeImage, MediaAttachment{
		URL: "https://cdn.example.com/p.jpg",
	}, &caption)
	require.NoError(t, err)
	original.ID = 77
	original.IsRead = true

	dup := original.NewForwardedCopy(5, 9)
	assert.Equal(t, uint64(5), dup.ConversationID)
	assert.Equal(t, uint64(9), dup.SenderID)
	assert.Equal(t, TypeImage, dup.Type)
	assert.Equal(t, original.MediaURL, dup.MediaURL)
	assert.Equal(t, "look", *dup.Content)
	assert.True(t, dup.IsForwarded)
	assert.False(t, dup.IsRead)
	require.NotNil(t, dup.OriginalMessageID)
	assert.Equal(t, uint64(77), *dup.OriginalMessageID)
	assert.Zero(t, dup.ID)
}

func TestPreviewText(t *testing.T) {
	text, _ := NewTextMessage(1, 2, "hello there")
	assert.Equal(t, "hello there", text.PreviewText())

	photo, _ := NewMediaMessage(1, 2, TypeImage, MediaAttachment{URL: "x"}, nil)
	assert.Equal(t, "[Photo]", photo.PreviewText())

	voice, _ := NewMediaMessage(1, 2, TypeAudio, MediaAttachment{URL: "x"}, nil)
	assert.Equal(t, "[Voice message]", voice.PreviewText())

	gift := NewGiftMessage(1, 2, 3, nil)
	assert.Equal(t, "[Gift]", gift.PreviewText())

	card := NewBusinessCardMessage(1, 2)
	assert.Equal(t, "[Business card]", card.PreviewText())
}

func TestDirectPairKey(t *testing.T) {
	assert.Equal(t, "3:8", DirectPairKey(8, 3))
	assert.Equal(t, "3:8", DirectPairKey(3, 8))
}
