package postgres

import (
	"time"

	"github.com/orielmalik/people-directory/business/domain/person"
)

type Person struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Country   string
	City      string
	Zip       string
	Roles     []string
	Birthdate time.Time
}

// toDBPerson creates a Person that will be saved inside of postgres.
func toDBPerson(p person.Person) Person {
	return Person{
		Email:     p.Email,
		Password:  p.Password,
		FirstName: p.Name.First,
		LastName:  p.Name.Last,
		Country:   p.Address.Country,
		City:      p.Address.City,
		Zip:       p.Address.Zip,
		Roles:     p.Roles,
		Birthdate: p.Birthdate,
	}
}

func (p Person) toDomainPerson() person.Person {
	return person.Person{
		Email:    p.Email,
		Password: p.Password,
		Name: person.Name{
			First: p.FirstName,
			Last:  p.LastName,
		},
		Address: person.Address{
			Country: p.Country,
			City:    p.City,
			Zip:     p.Zip,
		},
		Roles:     p.Roles,
		Birthdate: p.Birthdate.UTC(),
	}
}
