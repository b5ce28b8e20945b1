package domain

type Passenger struct {
	ID        int64  `db:"id" json:"passenger_id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
}

func (p *Passenger) FullName() string {
	return p.FirstName + " " + p.LastName
}
