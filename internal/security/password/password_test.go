package password

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// parámetros baratos para tests
var testParams = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16}

func TestHashVerify(t *testing.T) {
	t.Parallel()

	h, err := Hash(testParams, "secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.True(t, Verify("secret123", h))
	assert.False(t, Verify("secret124", h))

	h2, err := Hash(testParams, "secret123")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "salt must differ between hashes")
}

func TestHash_RejectsEmpty(t *testing.T) {
	_, err := Hash(testParams, "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerify_MalformedPHC(t *testing.T) {
	t.Parallel()
	for _, phc := range []string{
		"",
		"$argon2id$",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$ZGs",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$ZGs",
	} {
		assert.False(t, Verify("x", phc), phc)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	argon, err := Hash(testParams, "pw-argon")
	require.NoError(t, err)
	bc, err := bcrypt.GenerateFromPassword([]byte("pw-bcrypt"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name   string
		scheme string
		raw    string
		want   Scheme
	}{
		{"empty", "", "", SchemeNone},
		{"legacy plaintext", "", "secret123", SchemePlaintext},
		{"legacy argon2id", "", argon, SchemeArgon2id},
		{"legacy bcrypt", "", string(bc), SchemeBcrypt},
		{"plaintext that looks like bcrypt", "", "$2b$not-a-hash", SchemePlaintext},
		{"plaintext that looks like argon", "", "$argon2id$oops", SchemePlaintext},
		{"explicit scheme wins", "plaintext", argon, SchemePlaintext},
		{"explicit argon2id", "ARGON2ID", argon, SchemeArgon2id},
		{"unknown scheme", "md5", "abc", Scheme("md5")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.scheme, tt.raw).Scheme)
		})
	}
}

func TestCredential_Verify(t *testing.T) {
	t.Parallel()

	hashed, err := HashCredential(testParams, "secret123")
	require.NoError(t, err)
	assert.True(t, hashed.IsHashed())
	assert.True(t, hashed.Verify("secret123"))
	assert.False(t, hashed.Verify("wrong"))

	// un hash nunca se compara en claro, ni siquiera contra su propio valor
	assert.False(t, hashed.Verify(hashed.Value))

	bc, err := bcrypt.GenerateFromPassword([]byte("legacy-pw"), bcrypt.MinCost)
	require.NoError(t, err)
	b := Decode("", string(bc))
	assert.True(t, b.Verify("legacy-pw"))
	assert.False(t, b.Verify("nope"))

	plain := Plaintext("secret123")
	assert.False(t, plain.IsHashed())
	assert.True(t, plain.Verify("secret123"))
	assert.False(t, plain.Verify("secret12"))
	assert.False(t, plain.Verify(""))

	assert.False(t, Credential{}.Verify(""))
	assert.False(t, Decode("md5", "abc").Verify("abc"))
}

func TestCredential_StringDoesNotLeak(t *testing.T) {
	c := Plaintext("hunter2")
	assert.Equal(t, "credential(plaintext)", c.String())
	assert.NotContains(t, c.GoString(), "hunter2")
}

func TestPolicy(t *testing.T) {
	p := Policy{MinLength: 8}
	vs := p.Check("short")
	assert.Equal(t, []string{ViolationTooShort}, vs.Codes())
	assert.Equal(t, "La contraseña debe tener al menos 8 caracteres", vs.String())

	assert.Empty(t, p.Check("longenough"))
	// se cuentan runas, no bytes: 7 runas son 14 bytes
	assert.Equal(t, []string{ViolationTooShort}, p.Check("ñañañañ").Codes())

	strict := Policy{MinLength: 4, RequireUpper: true, RequireDigit: true, RequireSymbol: true}
	vs = strict.Check("abcd")
	assert.Equal(t, []string{ViolationMissingUpper, ViolationMissingDigit, ViolationMissingSymbol}, vs.Codes())
	assert.Equal(t, "Debe incluir una mayúscula; Debe incluir un número; Debe incluir un símbolo", vs.String())
}

func TestBlacklist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "common.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comunes\nPassword123\n\n12345678\n"), 0o600))

	bl, err := LoadBlacklist(path)
	require.NoError(t, err)
	assert.True(t, bl.Contains("password123"))
	assert.True(t, bl.Contains(" 12345678 "))
	assert.False(t, bl.Contains("# comunes"))
	assert.False(t, bl.Contains("secret123"))

	empty, err := LoadBlacklist("")
	require.NoError(t, err)
	assert.False(t, empty.Contains("password123"))

	var nilList *Blacklist
	assert.False(t, nilList.Contains("x"))
}
