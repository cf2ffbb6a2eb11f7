// Package repository define los tipos de dominio de cuentas y el puerto de
// persistencia que implementan los adapters de internal/store.
package repository
