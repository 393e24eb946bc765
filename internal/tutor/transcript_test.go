package tutor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptRoundTrip(t *testing.T) {
	in := Transcript{
		{Role: RoleTutor, Content: "What is a stack?"},
		{Role: RoleStudent, Content: "LIFO \"last in, first out\"\nlike plates"},
		{Role: RoleTutor, Content: "Good! What's one use?"},
		{Role: RoleStudent, Content: "Undo history"},
	}

	data, err := in.Marshal()
	require.NoError(t, err)

	out, err := UnmarshalTranscript(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTranscriptEmpty(t *testing.T) {
	data, err := Transcript(nil).Marshal()
	require.NoError(t, err)
	assert.Equal(t, "[]", data)

	out, err := UnmarshalTranscript("")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = UnmarshalTranscript("{not json")
	assert.Error(t, err)
}

func TestTranscriptHelpers(t *testing.T) {
	tr := Transcript{
		{Role: RoleTutor, Content: "q"},
		{Role: RoleStudent, Content: "first"},
		{Role: RoleTutor, Content: "hint"},
		{Role: RoleStudent, Content: "second"},
	}

	assert.Equal(t, "first", tr.FirstStudentTurn())
	assert.Equal(t, tr[2:], tr.Tail(2))
	assert.Equal(t, tr, tr.Tail(10))
	assert.Equal(t, "tutor: hint\nstudent: second", tr.Tail(2).String())
	assert.Equal(t, "", Transcript{{Role: RoleTutor, Content: "q"}}.FirstStudentTurn())
}
