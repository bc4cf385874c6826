package confirmation

// Confirmation type codes as reported in data-type. Anything else is
// treated as "other".
const (
	TypeTrade  = 2
	TypeMarket = 3
)

// Signature tags. Each mobileconf operation is signed with the tag
// naming it.
const (
	TagList    = "conf"
	TagAllow   = "allow"
	TagCancel  = "cancel"
	TagDetails = "details"
)

// Decision is what to do with a set of confirmations.
type Decision string

const (
	Allow Decision = TagAllow
	Deny  Decision = TagCancel
)
