package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttachmentRoundTrip(t *testing.T) {
	subject, _ := New("doc")
	env, err := AddAttachment(subject, "payload", "com.example.vendor", "v1")
	require.NoError(t, err)

	attachments, err := Attachments(env)
	require.NoError(t, err)
	require.Len(t, attachments, 1)

	got, err := Attachment(env, "com.example.vendor")
	require.NoError(t, err)
	require.NotNil(t, got)

	_, err = Attachment(env, "nonexistent.vendor")
	require.ErrorIs(t, err, ErrNonexistentAttachment)
}

func TestAttachmentAmbiguous(t *testing.T) {
	subject, _ := New("doc")
	env, err := AddAttachment(subject, "payload-1", "com.example.vendor", "")
	require.NoError(t, err)
	env, err = AddAttachment(env, "payload-2", "com.example.vendor", "")
	require.NoError(t, err)

	_, err = Attachment(env, "com.example.vendor")
	require.ErrorIs(t, err, ErrAmbiguousAttachment)
}
