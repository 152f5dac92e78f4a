package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// Storage is where a cooked dish is kept, which drives how long it lasts.
type Storage string

const (
	StorageRoom    Storage = "room"
	StorageFridge  Storage = "fridge"
	StorageFreezer Storage = "freezer"
)

var ErrInvalidStorage = errors.New("storage must be room, fridge or freezer")

// ParseStorage accepts the three storage names; an empty string means fridge.
func ParseStorage(s string) (Storage, error) {
	switch Storage(s) {
	case "":
		return StorageFridge, nil
	case StorageRoom, StorageFridge, StorageFreezer:
		return Storage(s), nil
	}

	return "", fmt.Errorf("%q: %w", s, ErrInvalidStorage)
}

// CookedEstimate is the service's guess at how long a cooked dish keeps.
// ExpiryDate is an ISO date; FoodName, Category and Reason may be empty.
type CookedEstimate struct {
	FoodName         string  `json:"food_name"`
	Category         string  `json:"category"`
	DaysAfterCooking int     `json:"days_after_cooking"`
	ExpiryDate       string  `json:"expiry_date"`
	Reason           string  `json:"reason"`
	CookedAt         string  `json:"cooked_at"`
	Storage          Storage `json:"storage"`
}

// EstimateCooked uploads a photo of a dish and asks the service when it
// stops being safe to eat. cookedAt is optional; the service assumes now.
func (c *Client) EstimateCooked(
	ctx context.Context,
	image io.Reader,
	filename string,
	storage Storage,
	cookedAt *time.Time,
) (*CookedEstimate, error) {
	fields := map[string]string{"storage": string(storage)}
	if cookedAt != nil {
		fields["cookedAt"] = cookedAt.UTC().Format(time.RFC3339)
	}

	resp, err := c.postImage(ctx, "/expiry/estimate-cooked", image, filename, fields)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("cooked-food estimate failed (%d)", resp.StatusCode)
	}

	var est CookedEstimate
	if err := json.NewDecoder(resp.Body).Decode(&est); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &est, nil
}
