package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pushPayload = `{
  "ref": "refs/heads/main",
  "repository": {"full_name": "octo/demo"},
  "head_commit": {
    "id": "6dcb09b5b57875f334f61aebed695e2e4193db5e",
    "message": "Add helpers",
    "timestamp": "2024-04-01T10:20:30+02:00",
    "author": {"name": "Mona", "email": "mona@example.com"},
    "added": ["pkg/util.py", "README.md"],
    "modified": ["main.py", "pkg/util.py", "setup.cfg"],
    "removed": ["old.py"]
  }
}`

func TestParsePushEvent(t *testing.T) {
	ev, err := ParsePushEvent([]byte(pushPayload))
	require.NoError(t, err)

	assert.Equal(t, "octo/demo", ev.Repository.FullName)
	require.NotNil(t, ev.HeadCommit)
	assert.Equal(t, "6dcb09b5b57875f334f61aebed695e2e4193db5e", ev.HeadCommit.ID)
	assert.Equal(t, "Mona", ev.HeadCommit.Author.Name)
	assert.True(t, time.Date(2024, 4, 1, 8, 20, 30, 0, time.UTC).Equal(ev.HeadCommit.Timestamp))
	assert.Equal(t, []string{"pkg/util.py", "main.py"}, ev.PythonFiles())
}

func TestParsePushEvent_Malformed(t *testing.T) {
	_, err := ParsePushEvent([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParsePushEvent([]byte(`{"head_commit": null}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestPythonFiles_NoHeadCommit(t *testing.T) {
	ev, err := ParsePushEvent([]byte(`{"repository": {"full_name": "octo/demo"}, "head_commit": null}`))
	require.NoError(t, err)
	assert.Nil(t, ev.HeadCommit)
	assert.Empty(t, ev.PythonFiles())
}
