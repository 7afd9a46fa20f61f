package lib

// DefaultUsernameAliases are display names for a few seeded accounts. They only change
// what is rendered, never what is stored or sent.
var DefaultUsernameAliases = map[string]string{
	"john_doe":     "anjali",
	"jane_smith":   "shivani",
	"travel_buddy": "Shruti",
}

type UsernameAliases map[string]string

// NewUsernameAliases layers extra on top of the defaults.
func NewUsernameAliases(extra map[string]string) UsernameAliases {
	aliases := make(UsernameAliases, len(DefaultUsernameAliases)+len(extra))
	for k, v := range DefaultUsernameAliases {
		aliases[k] = v
	}
	for k, v := range extra {
		aliases[k] = v
	}
	return aliases
}

func (a UsernameAliases) Display(username string) string {
	if alias, ok := a[username]; ok && alias != "" {
		return alias
	}
	return username
}
