package importers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/memberimport/internal/entities"
)

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestIsMemberEqual(t *testing.T) {
	t.Run("same name and birth day", func(t *testing.T) {
		a := Identity{FirstName: "Emma", LastName: "Peeters", BirthDay: day(2015, time.August, 20)}
		b := Identity{FirstName: "emma", LastName: "PEETERS", BirthDay: day(2015, time.August, 20)}
		assert.True(t, IsMemberEqual(a, b))
	})

	t.Run("missing birth day", func(t *testing.T) {
		a := Identity{FirstName: "Emma", LastName: "Peeters"}
		b := Identity{FirstName: "Emma", LastName: "Peeters", BirthDay: day(2015, time.August, 20)}
		assert.False(t, IsMemberEqual(a, b))
	})

	t.Run("national register number match is enough", func(t *testing.T) {
		a := Identity{FirstName: "Emma", LastName: "Peeters", NationalRegisterNumber: "95.08.20-123.67"}
		b := Identity{FirstName: "Someone", LastName: "Else", NationalRegisterNumber: "95082012367"}
		assert.True(t, IsMemberEqual(a, b))
		assert.True(t, IsMemberEqual(b, a))
	})

	t.Run("different national register numbers", func(t *testing.T) {
		c := Identity{FirstName: "Emma", LastName: "Peeters", BirthDay: day(2015, time.August, 20), NationalRegisterNumber: "15.08.20-001.02"}
		d := Identity{FirstName: "Emma", LastName: "Peters", BirthDay: day(2015, time.August, 20), NationalRegisterNumber: "15.08.20-003.04"}
		assert.False(t, IsMemberEqual(c, d))
		assert.False(t, IsMemberProbablyEqual(c, d))
	})

	t.Run("member number match is enough", func(t *testing.T) {
		a := Identity{FirstName: "Emma", MemberNumber: "L-042"}
		b := Identity{FirstName: "Jonas", MemberNumber: "l-042 "}
		assert.True(t, IsMemberEqual(a, b))
	})

	t.Run("mistyped member number falls back to name and birth day", func(t *testing.T) {
		a := Identity{FirstName: "Emma", LastName: "Peeters", BirthDay: day(2015, time.August, 20), MemberNumber: "L-042"}
		b := Identity{FirstName: "Emma", LastName: "Peeters", BirthDay: day(2015, time.August, 20), MemberNumber: "L-043"}
		assert.True(t, IsMemberEqual(a, b))
		assert.True(t, IsMemberEqual(b, a))
	})

	t.Run("different member numbers keep similar names apart", func(t *testing.T) {
		a := Identity{FirstName: "Emma", LastName: "Peeters", BirthDay: day(2015, time.August, 20), MemberNumber: "L-042"}
		b := Identity{FirstName: "Emma", LastName: "Peters", BirthDay: day(2015, time.August, 20), MemberNumber: "L-043"}
		assert.False(t, IsMemberEqual(a, b))
		assert.False(t, IsMemberProbablyEqual(a, b))
	})
}

func TestIsMemberProbablyEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Identity
		expected bool
	}{
		{
			name:     "one typo in the name and one in the birth day",
			a:        Identity{FirstName: "Jan", LastName: "Peeters", BirthDay: day(2010, time.May, 4)},
			b:        Identity{FirstName: "Jan", LastName: "Peters", BirthDay: day(2010, time.May, 5)},
			expected: true,
		},
		{
			name:     "two name typos on a six letter name",
			a:        Identity{FirstName: "Lena", LastName: "Bo", BirthDay: day(2010, time.May, 4)},
			b:        Identity{FirstName: "Lena", LastName: "Boss", BirthDay: day(2010, time.May, 5)},
			expected: true,
		},
		{
			name:     "two name typos on a five letter name",
			a:        Identity{FirstName: "Lea", LastName: "Bo", BirthDay: day(2010, time.May, 4)},
			b:        Identity{FirstName: "Lea", LastName: "Boss", BirthDay: day(2010, time.May, 5)},
			expected: false,
		},
		{
			name:     "two typos in the birth day",
			a:        Identity{FirstName: "Jan", LastName: "Peeters", BirthDay: day(2010, time.May, 4)},
			b:        Identity{FirstName: "Jan", LastName: "Peeters", BirthDay: day(2010, time.June, 5)},
			expected: false,
		},
		{
			name:     "no birth day and same name",
			a:        Identity{FirstName: "Jan", LastName: "Peeters"},
			b:        Identity{FirstName: "Jan", LastName: "Peeters", BirthDay: day(2010, time.May, 4)},
			expected: true,
		},
		{
			name:     "no birth day and a typo",
			a:        Identity{FirstName: "Jan", LastName: "Peeters"},
			b:        Identity{FirstName: "Jan", LastName: "Peters"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsMemberProbablyEqual(tt.a, tt.b))
			assert.Equal(t, tt.expected, IsMemberProbablyEqual(tt.b, tt.a))
		})
	}
}

func memberNamed(id, first, last string, birthDay *time.Time) entities.Member {
	return entities.Member{
		ID:      id,
		Details: entities.MemberDetails{FirstName: first, LastName: last, BirthDay: birthDay},
	}
}

func TestFindExistingMember(t *testing.T) {
	members := []entities.Member{
		memberNamed("m-probable", "Jan", "Peters", day(2010, time.May, 4)),
		memberNamed("m-exact", "Jan", "Peeters", day(2010, time.May, 4)),
	}

	t.Run("exact match wins", func(t *testing.T) {
		base := NewImportMemberBaseResult(0)
		base.SetFirstName("Jan")
		base.SetLastName("Peeters")
		base.SetBirthDay(*day(2010, time.May, 4))

		result := FindExistingMember(base, members)
		require.NotNil(t, result.ConfirmedMember())
		assert.Equal(t, "m-exact", result.ConfirmedMember().ID)
		assert.False(t, result.NeedsConfirmation())
	})

	t.Run("probable match waits for confirmation", func(t *testing.T) {
		base := NewImportMemberBaseResult(1)
		base.SetFirstName("Jan")
		base.SetLastName("Peters")
		base.SetBirthDay(*day(2010, time.May, 5))

		result := FindExistingMember(base, members[:1])
		assert.True(t, result.NeedsConfirmation())
		assert.Nil(t, result.ConfirmedMember())

		result.MarkEqual()
		require.NotNil(t, result.ConfirmedMember())
		assert.Equal(t, "m-probable", result.ConfirmedMember().ID)

		result.MarkNotEqual()
		assert.Nil(t, result.ConfirmedMember())
		assert.False(t, result.NeedsConfirmation())
	})

	t.Run("empty row matches nothing", func(t *testing.T) {
		result := FindExistingMember(NewImportMemberBaseResult(2), members)
		assert.Nil(t, result.Existing())
	})
}
