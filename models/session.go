package models

// Session is the authenticated identity resolved from a bearer token.
type Session struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
}

// IsLawEnforcement reports whether the session belongs to a law
// enforcement account.
func (s Session) IsLawEnforcement() bool {
	return s.UserType == UserTypeLawEnforcement
}

// IsCitizen reports whether the session belongs to a citizen account.
func (s Session) IsCitizen() bool {
	return s.UserType == UserTypeCitizen
}

// SenderType maps the session role to the sender type stored on chat
// messages.
func (s Session) SenderType() string {
	if s.IsLawEnforcement() {
		return SenderTypeOfficer
	}
	return SenderTypeCitizen
}
