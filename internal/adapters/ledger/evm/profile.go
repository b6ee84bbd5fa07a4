// Package evm talks to catalog contracts deployed on an Ethereum-compatible
// network through go-ethereum.
package evm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
)

// Profile maps the generic catalog operations onto one contract deployment.
type Profile struct {
	Kind           string
	ListMethod     string
	CreateMethod   string
	PurchaseMethod string
	// OwnedIndexMethod is a public (address, uint256) => uint256 accessor
	// enumerating the ids an account holds. Empty derives ownership from
	// the participants field.
	OwnedIndexMethod string
	CreateHasImage   bool

	TitleField        string
	DescriptionField  string
	ImageField        string
	PriceField        string
	CreatorField      string
	ParticipantsField string
}

var profiles = map[string]Profile{
	"course": {
		Kind:              "course",
		ListMethod:        "getCourses",
		CreateMethod:      "createCourse",
		PurchaseMethod:    "enroll",
		OwnedIndexMethod:  "coursesByStudent",
		TitleField:        "title",
		DescriptionField:  "description",
		PriceField:        "price",
		CreatorField:      "creator",
		ParticipantsField: "enrolledStudents",
	},
	"product": {
		Kind:              "product",
		ListMethod:        "getProducts",
		CreateMethod:      "addProduct",
		PurchaseMethod:    "purchaseProduct",
		CreateHasImage:    true,
		TitleField:        "title",
		DescriptionField:  "description",
		ImageField:        "imageURL",
		PriceField:        "price",
		ParticipantsField: "buyers",
	},
	"tournament": {
		Kind:              "tournament",
		ListMethod:        "getTournaments",
		CreateMethod:      "addTournament",
		PurchaseMethod:    "participateInTournament",
		CreateHasImage:    true,
		TitleField:        "name",
		DescriptionField:  "description",
		ImageField:        "imageURL",
		PriceField:        "entryFee",
		ParticipantsField: "participants",
	},
}

// ProfileByKind returns the built-in profile for a catalog kind.
func ProfileByKind(kind string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown catalog kind %q (known: %s)", apperrors.ErrValidation, kind, strings.Join(Kinds(), ", "))
	}
	return p, nil
}

// Kinds lists the built-in profile names.
func Kinds() []string {
	kinds := make([]string, 0, len(profiles))
	for k := range profiles {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

type abiArg struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	InternalType string   `json:"internalType,omitempty"`
	Components   []abiArg `json:"components,omitempty"`
}

type abiEntry struct {
	Type            string   `json:"type"`
	Name            string   `json:"name"`
	Inputs          []abiArg `json:"inputs"`
	Outputs         []abiArg `json:"outputs"`
	StateMutability string   `json:"stateMutability"`
}

func (p Profile) itemComponents() []abiArg {
	components := []abiArg{
		{Name: p.TitleField, Type: "string"},
		{Name: p.DescriptionField, Type: "string"},
	}
	if p.ImageField != "" {
		components = append(components, abiArg{Name: p.ImageField, Type: "string"})
	}
	components = append(components, abiArg{Name: p.PriceField, Type: "uint256"})
	if p.CreatorField != "" {
		components = append(components, abiArg{Name: p.CreatorField, Type: "address"})
	}
	if p.ParticipantsField != "" {
		components = append(components, abiArg{Name: p.ParticipantsField, Type: "address[]"})
	}
	return components
}

// ABIJSON renders the subset of the contract interface the gateway calls.
func (p Profile) ABIJSON() ([]byte, error) {
	createInputs := []abiArg{
		{Name: "_" + p.TitleField, Type: "string"},
		{Name: "_description", Type: "string"},
	}
	if p.CreateHasImage {
		createInputs = append(createInputs, abiArg{Name: "_imageURL", Type: "string"})
	}
	createInputs = append(createInputs, abiArg{Name: "_" + p.PriceField, Type: "uint256"})

	entries := []abiEntry{
		{
			Type:   "function",
			Name:   p.ListMethod,
			Inputs: []abiArg{},
			Outputs: []abiArg{{
				Name:         "",
				Type:         "tuple[]",
				InternalType: "struct " + p.Kind + "[]",
				Components:   p.itemComponents(),
			}},
			StateMutability: "view",
		},
		{
			Type:            "function",
			Name:            p.CreateMethod,
			Inputs:          createInputs,
			Outputs:         []abiArg{},
			StateMutability: "nonpayable",
		},
		{
			Type:            "function",
			Name:            p.PurchaseMethod,
			Inputs:          []abiArg{{Name: "id", Type: "uint256"}},
			Outputs:         []abiArg{},
			StateMutability: "payable",
		},
	}
	if p.OwnedIndexMethod != "" {
		entries = append(entries, abiEntry{
			Type:            "function",
			Name:            p.OwnedIndexMethod,
			Inputs:          []abiArg{{Name: "", Type: "address"}, {Name: "", Type: "uint256"}},
			Outputs:         []abiArg{{Name: "", Type: "uint256"}},
			StateMutability: "view",
		})
	}
	return json.Marshal(entries)
}

// ABI parses the profile's contract interface.
func (p Profile) ABI() (abi.ABI, error) {
	raw, err := p.ABIJSON()
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to render %s ABI: %w", p.Kind, err)
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse %s ABI: %w", p.Kind, err)
	}
	return parsed, nil
}
