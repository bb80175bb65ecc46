package person

import "time"

// Name represents the two-part name of a person.
type Name struct {
	First string
	Last  string
}

// Address represents where a person lives. Country must carry exactly two
// uppercase letters, an approximation of an ISO country code.
type Address struct {
	Country string
	City    string
	Zip     string
}

// Person represents a person in the directory. Email is the sole identity and
// never changes after creation. Birthdate is date-only in UTC and is the only
// source for age, age itself is never stored.
type Person struct {
	Email     string
	Password  string
	Name      Name
	Address   Address
	Roles     []string
	Birthdate time.Time
}

// NewPerson represents all required data to register a new person.
type NewPerson struct {
	Email     string
	Password  string
	Name      Name
	Address   Address
	Roles     []string
	Birthdate time.Time
}

// UpdatePerson represents the mutable fields of a person. The update path
// replaces all of them at once, it is not a partial patch. Email and password
// are not here on purpose: email is immutable and the password is only ever
// compared, never changed, by an update.
type UpdatePerson struct {
	Name      Name
	Address   Address
	Roles     []string
	Birthdate time.Time
}
