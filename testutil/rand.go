package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v7"
)

// RandomAlphaNum generates random alphanumeric string
// in case length <= 0 it returns empty string
func RandomAlphaNum(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	randomString := make([]byte, length)
	for i := range randomString {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		randomString[i] = charset[num.Int64()]
	}

	return string(randomString), nil
}

// RandomAccount returns an account ID in the <name>.<domain> shape the pool
// stores as opaque strings.
func RandomAccount() string {
	return fmt.Sprintf("%s.%s", gofakeit.Username(), gofakeit.DomainSuffix())
}

// RandomAmount returns a positive amount within [1, max].
func RandomAmount(max int64) math.Int {
	return math.NewInt(int64(gofakeit.Number(1, int(max))))
}
