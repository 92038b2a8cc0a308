package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/memberimport/internal/entities"
)

func TestImportMemberResultPatchesExistingMember(t *testing.T) {
	existing := &entities.Member{
		ID: "m-1",
		Details: entities.MemberDetails{
			FirstName: "Emma",
			LastName:  "Peeters",
			Address:   &entities.Address{Street: "Kerkstraat", Number: "12", PostalCode: "9000", City: "Gent", Country: "BE"},
			Parents:   []entities.Parent{{ID: "p-1", FirstName: "Lies", LastName: "Peeters"}},
		},
	}
	r := NewImportMemberResult(3, existing)

	number := "14"
	phone := "+32 472 12 34 56"
	r.UpdatePerson(CategoryMember, func(p *PersonPatch) {
		p.EnsureAddress().Number = &number
	})
	r.UpdatePerson(CategoryParent1, func(p *PersonPatch) {
		first, last := "lies", "peeters"
		p.FirstName = &first
		p.LastName = &last
		p.Phone = &phone
	})

	require.True(t, r.HasChanges())

	details := r.PatchedDetails()
	assert.Equal(t, "Kerkstraat", details.Address.Street)
	assert.Equal(t, "14", details.Address.Number)
	assert.Equal(t, "12", existing.Details.Address.Number, "existing member must not change")

	require.Len(t, details.Parents, 1)
	assert.Equal(t, "p-1", details.Parents[0].ID)
	assert.Equal(t, phone, details.Parents[0].Phone)

	changed := r.ChangedParents()
	require.Len(t, changed, 1)
	assert.Equal(t, "p-1", changed[0].ID)

	member := r.PatchedMember("org-1")
	assert.Equal(t, "m-1", member.ID)
	assert.Nil(t, r.NewMember())
}

func TestImportMemberResultNewMemberIsStable(t *testing.T) {
	r := NewImportMemberResult(0, nil)
	assert.False(t, r.IsExisting())
	assert.True(t, r.HasChanges())

	first := r.PatchedMember("org-1")
	second := r.PatchedMember("org-1")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "org-1", first.OrganizationID)

	_, err := r.CheckoutMember()
	assert.ErrorIs(t, err, ErrNoMember)
}

func TestUpdatePersonRejectsOtherCategories(t *testing.T) {
	r := NewImportMemberResult(0, nil)
	assert.False(t, r.UpdatePerson(CategoryPayment, func(*PersonPatch) {}))
	assert.False(t, r.UpdatePerson(CategoryRecords("kamp"), func(*PersonPatch) {}))
}
