package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoginSelectors locate the marketplace login form elements.
type LoginSelectors struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	LoginButton string `json:"login_button"`
}

// ListingFormSelectors locate every element of the multi-step listing
// form. Entries holding a %s are templates completed with the visible
// label or value at click time.
type ListingFormSelectors struct {
	NewListing  string `json:"new_listing"`
	ItemForSale string `json:"item_for_sale"`

	ImageInput  string `json:"image_input"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	Description string `json:"description"`

	CategoryButton string `json:"category_button"`
	CategoryOption string `json:"category_option"` // %s = category label

	ConditionButton string `json:"condition_button"`
	ConditionOption string `json:"condition_option"` // %s = condition label

	DropdownButton string `json:"dropdown_button"` // %s = field label
	DropdownOption string `json:"dropdown_option"` // %s = option value
	LabeledInput   string `json:"labeled_input"`   // %s = field label

	ListAsButton string `json:"list_as_button"`
	ListAsOption string `json:"list_as_option"` // %s = option value

	SKU            string `json:"sku"`
	TagsInput      string `json:"tags_input"`
	TagsAddButton  string `json:"tags_add_button"`
	Location       string `json:"location"`
	LocationOption string `json:"location_option"`

	Checkbox string `json:"checkbox"` // %s = checkbox label

	NextButton    string `json:"next_button"`
	PublishButton string `json:"publish_button"`
}

// Selectors is the full selector catalog, loaded from a JSON file so the
// site-specific strings stay content rather than code.
type Selectors struct {
	Login       LoginSelectors       `json:"login"`
	ListingForm ListingFormSelectors `json:"listing_form"`
}

func LoadSelectors(path string) (*Selectors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read selectors %s: %w", path, err)
	}

	sel := &Selectors{}
	if err := json.Unmarshal(data, sel); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return sel, nil
}
