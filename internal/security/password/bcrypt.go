package password

import "golang.org/x/crypto/bcrypt"

// Las cuentas importadas de la base JSON original traen hashes bcrypt ($2a/$2b/$2y).
// Se verifican pero nunca se generan nuevos: los hashes nuevos son argon2id.

func isBcrypt(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// VerifyBcrypt compara plain contra un hash bcrypt.
func VerifyBcrypt(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
