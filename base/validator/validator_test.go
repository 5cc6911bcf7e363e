package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/suite"
)

type ValidatorTestSuite struct {
	suite.Suite
}

func TestValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}

func (s *ValidatorTestSuite) TestIsEnsName() {
	tests := []struct {
		desc    string
		name    string
		isValid bool
	}{
		{
			desc:    "plain name",
			name:    "vitalik.eth",
			isValid: true,
		},
		{
			desc:    "subdomain",
			name:    "blog.vitalik.eth",
			isValid: true,
		},
		{
			desc:    "upper case is normalised",
			name:    "Walrus.ETH",
			isValid: true,
		},
		{
			desc:    "other tld",
			name:    "vitalik.com",
			isValid: false,
		},
		{
			desc:    "bare tld",
			name:    ".eth",
			isValid: false,
		},
		{
			desc:    "empty label",
			name:    "a..eth",
			isValid: false,
		},
		{
			desc:    "empty",
			name:    "",
			isValid: false,
		},
	}
	for _, t := range tests {
		s.Equal(t.isValid, IsEnsName(t.name), t.desc)
	}
}

func (s *ValidatorTestSuite) TestCustomValidator() {
	type req struct {
		Name string `validate:"required,ensname"`
	}

	v := NewCustomValidator(validator.New())
	s.NoError(v.Validate(&req{Name: "walrus.eth"}))
	s.Error(v.Validate(&req{Name: "walrus.sui"}))
	s.Error(v.Validate(&req{}))
}
