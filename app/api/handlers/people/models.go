package people

import (
	"fmt"
	"time"

	"github.com/orielmalik/people-directory/business/domain/person"
)

// passwordMask is the placeholder sent instead of a stored password. The
// exact value carries no meaning, the invariant is that the real credential
// never leaves the service.
const passwordMask = "*"

// dateOnly is the wire format for birthdates.
const dateOnly = "2006-01-02"

// Name represents the two-part name on the wire.
type Name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// Address represents the address on the wire.
type Address struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// Person represents the person view sent to clients. Read paths always carry
// the mask in the password field.
type Person struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Name      Name     `json:"name"`
	Address   Address  `json:"address"`
	Roles     []string `json:"roles"`
	Birthdate string   `json:"birthdate"`
}

func fromDomainPerson(p person.Person) Person {
	return Person{
		Email:    p.Email,
		Password: passwordMask,
		Name: Name{
			First: p.Name.First,
			Last:  p.Name.Last,
		},
		Address: Address{
			Country: p.Address.Country,
			City:    p.Address.City,
			Zip:     p.Address.Zip,
		},
		Roles:     p.Roles,
		Birthdate: p.Birthdate.Format(dateOnly),
	}
}

func fromDomainPeople(pp []person.Person) []Person {
	results := make([]Person, len(pp))
	for i, p := range pp {
		results[i] = fromDomainPerson(p)
	}
	return results
}

// NewPerson represents all of the required data to register a person. Email
// and country shapes are checked by the domain, in the order the directory
// promises, so only presence is validated here.
type NewPerson struct {
	Email     string   `json:"email" validate:"required"`
	Password  string   `json:"password" validate:"required"`
	Name      Name     `json:"name"`
	Address   Address  `json:"address"`
	Roles     []string `json:"roles"`
	Birthdate string   `json:"birthdate" validate:"required"`
}

func (np NewPerson) toDomainNewPerson() (person.NewPerson, error) {
	birthdate, err := time.Parse(dateOnly, np.Birthdate)
	if err != nil {
		return person.NewPerson{}, fmt.Errorf("parsing birthdate: %w", err)
	}

	return person.NewPerson{
		Email:    np.Email,
		Password: np.Password,
		Name: person.Name{
			First: np.Name.First,
			Last:  np.Name.Last,
		},
		Address: person.Address{
			Country: np.Address.Country,
			City:    np.Address.City,
			Zip:     np.Address.Zip,
		},
		Roles:     np.Roles,
		Birthdate: birthdate,
	}, nil
}

// UpdatePerson represents the replacement values for an update. The email
// field is accepted and ignored, identity never changes.
type UpdatePerson struct {
	Email     string   `json:"email"`
	Name      Name     `json:"name"`
	Address   Address  `json:"address"`
	Roles     []string `json:"roles"`
	Birthdate string   `json:"birthdate" validate:"required"`
}

func (up UpdatePerson) toDomainUpdatePerson() (person.UpdatePerson, error) {
	birthdate, err := time.Parse(dateOnly, up.Birthdate)
	if err != nil {
		return person.UpdatePerson{}, fmt.Errorf("parsing birthdate: %w", err)
	}

	return person.UpdatePerson{
		Name: person.Name{
			First: up.Name.First,
			Last:  up.Name.Last,
		},
		Address: person.Address{
			Country: up.Address.Country,
			City:    up.Address.City,
			Zip:     up.Address.Zip,
		},
		Roles:     up.Roles,
		Birthdate: birthdate,
	}, nil
}

// Credentials represents a login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Token is the response to a successful registration or login.
type Token struct {
	Token string `json:"token"`
}
