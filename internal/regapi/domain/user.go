package domain

import "time"

type User struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string // lowercased, unique
	Mobile            string
	Experience        string
	JobTitle          string
	PreferredLocation string
	JobType           string
	Role              string     // candidate or recruiter
	PasswordHash      string     // argon2 encoded
	VerifiedAt        *time.Time // nil until the emailed code is accepted
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (u User) Verified() bool { return u.VerifiedAt != nil }
