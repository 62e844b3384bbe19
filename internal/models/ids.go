package models

import "github.com/google/uuid"

// Entity identifiers are opaque UUID-backed types. String/Parse
// conversion happens once at the persistence and transport boundaries;
// the engine itself never handles raw id strings.

type ApplicationID uuid.UUID

func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ApplicationID{}, err
	}
	return ApplicationID(u), nil
}

func (id ApplicationID) String() string { return uuid.UUID(id).String() }

func (id ApplicationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

func (id ApplicationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ApplicationID) UnmarshalText(b []byte) error {
	parsed, err := ParseApplicationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

type LeaseID uuid.UUID

func NewLeaseID() LeaseID { return LeaseID(uuid.New()) }

func ParseLeaseID(s string) (LeaseID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return LeaseID{}, err
	}
	return LeaseID(u), nil
}

func (id LeaseID) String() string { return uuid.UUID(id).String() }

func (id LeaseID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

func (id LeaseID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *LeaseID) UnmarshalText(b []byte) error {
	parsed, err := ParseLeaseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

type ObligationID uuid.UUID

func NewObligationID() ObligationID { return ObligationID(uuid.New()) }

func ParseObligationID(s string) (ObligationID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ObligationID{}, err
	}
	return ObligationID(u), nil
}

func (id ObligationID) String() string { return uuid.UUID(id).String() }

func (id ObligationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ObligationID) UnmarshalText(b []byte) error {
	parsed, err := ParseObligationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

type PaymentID uuid.UUID

func NewPaymentID() PaymentID { return PaymentID(uuid.New()) }

func ParsePaymentID(s string) (PaymentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return PaymentID{}, err
	}
	return PaymentID(u), nil
}

func (id PaymentID) String() string { return uuid.UUID(id).String() }

func (id PaymentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *PaymentID) UnmarshalText(b []byte) error {
	parsed, err := ParsePaymentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
