package domain

// Exchange is one completed query/answer pair within a session.
type Exchange struct {
	Query  string
	Answer string
}
