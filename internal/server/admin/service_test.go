package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"carddemo/internal/server/auth/store/user"
	"carddemo/pkg/apierrors"
)

type AdminSuite struct {
	suite.Suite
	ctx     context.Context
	users   *user.MemoryStore
	service *Service
}

func (s *AdminSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = user.NewMemoryStore()
	s.service = NewService(s.users)
}

func TestAdminSuite(t *testing.T) {
	suite.Run(t, new(AdminSuite))
}

func (s *AdminSuite) TestCreateUserHashesPassword() {
	u, err := s.service.CreateUser(s.ctx, UserInput{
		UserID:    "NEWUSER1",
		FirstName: "New",
		LastName:  "User",
		Password:  "SECRET",
		UserType:  "U",
	})
	s.Require().NoError(err)

	s.True(u.IsActive)
	s.NotContains(string(u.PasswordHash), "SECRET")
	s.NoError(bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("SECRET")))
}

func (s *AdminSuite) TestCreateUserValidation() {
	cases := map[string]UserInput{
		"empty user ID":    {Password: "P", UserType: "U"},
		"user ID too long": {UserID: "WAYTOOLONGID", Password: "P", UserType: "U"},
		"missing password": {UserID: "USER0001", UserType: "U"},
		"password too long": {
			UserID: "USER0001", Password: "LONGPASSWORD", UserType: "U",
		},
		"bad user type": {UserID: "USER0001", Password: "P", UserType: "X"},
	}
	for name, in := range cases {
		_, err := s.service.CreateUser(s.ctx, in)
		s.True(apierrors.HasCode(err, apierrors.CodeValidation), name)
	}
}

func (s *AdminSuite) TestCreateDuplicateConflicts() {
	in := UserInput{UserID: "USER0001", Password: "P", UserType: "U"}
	_, err := s.service.CreateUser(s.ctx, in)
	s.Require().NoError(err)

	_, err = s.service.CreateUser(s.ctx, in)
	s.True(apierrors.HasCode(err, apierrors.CodeConflict))
}

func (s *AdminSuite) TestUpdateUserKeepsPasswordWhenBlank() {
	created, err := s.service.CreateUser(s.ctx, UserInput{
		UserID: "USER0001", Password: "FIRST", UserType: "U",
	})
	s.Require().NoError(err)

	updated, err := s.service.UpdateUser(s.ctx, UserInput{
		UserID: "USER0001", FirstName: "Renamed", UserType: "A",
	})
	s.Require().NoError(err)

	s.Equal("Renamed", updated.FirstName)
	s.Equal("A", updated.UserType)
	s.Equal(created.PasswordHash, updated.PasswordHash)
}

func (s *AdminSuite) TestUpdateUnknownUserNotFound() {
	_, err := s.service.UpdateUser(s.ctx, UserInput{UserID: "GHOST", UserType: "U"})
	s.True(apierrors.HasCode(err, apierrors.CodeNotFound))
}

func (s *AdminSuite) TestDeleteUser() {
	_, err := s.service.CreateUser(s.ctx, UserInput{
		UserID: "USER0001", Password: "P", UserType: "U",
	})
	s.Require().NoError(err)

	s.NoError(s.service.DeleteUser(s.ctx, "USER0001"))
	s.True(apierrors.HasCode(s.service.DeleteUser(s.ctx, "USER0001"), apierrors.CodeNotFound))
}

func (s *AdminSuite) TestListUsers() {
	for _, id := range []string{"BUSER", "AUSER"} {
		_, err := s.service.CreateUser(s.ctx, UserInput{UserID: id, Password: "P", UserType: "U"})
		s.Require().NoError(err)
	}

	users, err := s.service.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 2)
	s.Equal("AUSER", users[0].UserID)
}
