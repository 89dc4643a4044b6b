package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MemberType is the pricing tier of a member card.
type MemberType int

const (
	// Saving is the stored-value card, charged 30 per visit.
	Saving MemberType = 1
	// VIP is the membership card, charged 20 per visit.
	VIP MemberType = 2
)

var prices = map[MemberType]float64{
	Saving: 30,
	VIP:    20,
}

// MemberTypes lists every known tier in ascending order.
func MemberTypes() []MemberType {
	return []MemberType{Saving, VIP}
}

// Valid reports whether t is a known tier.
func (t MemberType) Valid() bool {
	_, ok := prices[t]
	return ok
}

// Price returns the flat amount charged per consumption event.
func (t MemberType) Price() (float64, bool) {
	p, ok := prices[t]
	return p, ok
}

func (t MemberType) String() string {
	switch t {
	case Saving:
		return "saving"
	case VIP:
		return "vip"
	default:
		return fmt.Sprintf("MemberType(%d)", int(t))
	}
}

// ParseMemberType accepts the numeric code ("1", "2") or the tier name.
func ParseMemberType(s string) (MemberType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		t := MemberType(n)
		if t.Valid() {
			return t, nil
		}
		return 0, fmt.Errorf("unknown member type %d", n)
	}
	switch strings.ToLower(s) {
	case "saving":
		return Saving, nil
	case "vip":
		return VIP, nil
	}
	return 0, fmt.Errorf("unknown member type %q", s)
}
