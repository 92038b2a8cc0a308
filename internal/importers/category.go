package importers

// CategoryKind is the kind of data a column contributes to.
type CategoryKind int

const (
	KindMember CategoryKind = iota
	KindParent1
	KindParent2
	KindPayment
	KindRecord
)

// Category groups matchers by what they fill in. Record categories carry the
// id of the custom record category.
type Category struct {
	Kind     CategoryKind
	RecordID string
}

var (
	CategoryMember  = Category{Kind: KindMember}
	CategoryParent1 = Category{Kind: KindParent1}
	CategoryParent2 = Category{Kind: KindParent2}
	CategoryPayment = Category{Kind: KindPayment}
)

// CategoryRecords is the category of the custom records in one record category.
func CategoryRecords(recordCategoryID string) Category {
	return Category{Kind: KindRecord, RecordID: recordCategoryID}
}

func (c Category) String() string {
	switch c.Kind {
	case KindMember:
		return "member"
	case KindParent1:
		return "parent1"
	case KindParent2:
		return "parent2"
	case KindPayment:
		return "payment"
	case KindRecord:
		return "record:" + c.RecordID
	default:
		return "unknown"
	}
}

// ParentIndex returns 0 or 1 for the parent categories.
func (c Category) ParentIndex() (int, bool) {
	switch c.Kind {
	case KindParent1:
		return 0, true
	case KindParent2:
		return 1, true
	default:
		return 0, false
	}
}

// IsPerson reports whether the category describes a person (member or parent).
func (c Category) IsPerson() bool {
	return c.Kind == KindMember || c.Kind == KindParent1 || c.Kind == KindParent2
}
