package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role values stored in users.role. Role stays empty until the one-shot
// assign-role call sets it.
const (
	RoleRequester = "solicitante"
	RoleManager   = "gestor"
	RoleSupplier  = "proveedor"
)

// User Model with Pointers for Nullable Fields
type User struct {
	ID           int64  `json:"id" db:"id"`
	Role         string `json:"role" db:"role"`
	Status       string `json:"status" db:"status"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FullName     string `json:"fullName" db:"full_name"`
	PhoneNumber  string `json:"phoneNumber" db:"phone_number"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Version   int       `json:"-" db:"version"`

	// --- Profile Fields (Pointers = Clean JSON) ---
	Department  *string `json:"department,omitempty" db:"department"`
	CompanyName *string `json:"companyName,omitempty" db:"company_name"`
	TaxID       *string `json:"taxId,omitempty" db:"tax_id"`

	// --- Supplier Evaluation Summary ---
	// Mirrors EPI completeness so manager lists don't have to join the
	// section rows.
	SupplierStatus *string  `json:"supplierStatus,omitempty" db:"supplier_status"`
	EpiScore       *float64 `json:"epiScore,omitempty" db:"epi_score"`
	EpiProgress    *int     `json:"epiProgress,omitempty" db:"epi_progress"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
