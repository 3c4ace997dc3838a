package apptest

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

// Password contraseña de los usuarios sembrados con SeedUser.
const Password = "Secreta-123"

var passwordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// SeedUser usuario activo con la contraseña Password.
func (s *Store) SeedUser(first, last, email string) *entity.User {
	u := &entity.User{
		FirstName:    first,
		LastName:     last,
		Email:        entity.NormalizeEmail(email),
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	s.Users.Seed(u)
	s.Sessions.UserNames[u.ID] = u.FullName()
	return u
}

// SeedCenter centro activo.
func (s *Store) SeedCenter(name string) *entity.HospitalCenter {
	c := &entity.HospitalCenter{Name: name, IsActive: true}
	s.Centers.Seed(c)
	s.Sessions.CenterNames[c.ID] = name
	return c
}

// Assign asignación activa desde ayer.
func (s *Store) Assign(userID, centerID int64, role string) *entity.UserCenterAssignment {
	a := &entity.UserCenterAssignment{
		UserID:           userID,
		HospitalCenterID: centerID,
		Role:             role,
		IsActive:         true,
		StartDate:        time.Now().Add(-24 * time.Hour),
	}
	s.Assignments.Seed(a)
	return a
}
