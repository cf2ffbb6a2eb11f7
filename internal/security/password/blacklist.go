package password

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist es un set de passwords comunes rechazadas en el registro.
// Se carga una vez al arrancar y es de solo lectura.
type Blacklist struct {
	data map[string]struct{}
}

// LoadBlacklist lee un archivo (una password por línea, # comenta).
// Un path vacío devuelve una lista vacía.
func LoadBlacklist(path string) (*Blacklist, error) {
	bl := &Blacklist{data: map[string]struct{}{}}
	if strings.TrimSpace(path) == "" {
		return bl, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		bl.Add(sc.Text())
	}
	return bl, sc.Err()
}

// Add agrega una entrada normalizada.
func (b *Blacklist) Add(pwd string) {
	if b.data == nil {
		b.data = map[string]struct{}{}
	}
	s := strings.TrimSpace(strings.ToLower(pwd))
	if s != "" && !strings.HasPrefix(s, "#") {
		b.data[s] = struct{}{}
	}
}

func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}
