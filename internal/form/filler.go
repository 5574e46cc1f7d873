// Multi-step listing form filler.
// Walks the marketplace "new listing" flow field by field for the
// listing index assigned to the profile, and records the listing in the
// posted ledger only after the publish click succeeds. A failed attempt
// abandons the page; the next attempt re-opens the flow from scratch.

package form

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"marketbot/internal/browser"
	"marketbot/internal/config"
	"marketbot/internal/gologin"
	"marketbot/internal/listing"
	"marketbot/utils"
)

const (
	newListingURL = "https://www.facebook.com/marketplace/you/selling"

	maxPhotos = 10
	maxTags   = 20

	waitTimeoutMs = 30000
)

// Category names with dedicated extra fields on the form.
const (
	categoryFurniture     = "Furniture"
	categoryHousehold     = "Household"
	categoryArtsAndCrafts = "Arts & Crafts"
)

// Visible labels of the delivery/visibility checkboxes.
const (
	labelPublicMeetup      = "Public meetup"
	labelDoorPickup        = "Door pickup"
	labelDoorDropoff       = "Door dropoff"
	labelBoostAfterPublish = "Boost listing after publish"
	labelHideFromFriends   = "Hide from friends"
)

// Recorder persists a successful publish for the profile's assigned
// listing. Satisfied by the file ledger.
type Recorder interface {
	RecordFor(profile *gologin.Profile) error
}

type Filler struct {
	session  *browser.Session
	cfg      *config.Config
	sel      config.ListingFormSelectors
	corpus   *listing.Corpus
	ledger   Recorder
	humanize *browser.Humanizer
	shots    *utils.ScreenshotDebugger
	log      *logrus.Logger
}

func NewFiller(session *browser.Session, cfg *config.Config, sel config.ListingFormSelectors,
	corpus *listing.Corpus, ledger Recorder, humanize *browser.Humanizer,
	shots *utils.ScreenshotDebugger, log *logrus.Logger) *Filler {
	return &Filler{
		session:  session,
		cfg:      cfg,
		sel:      sel,
		corpus:   corpus,
		ledger:   ledger,
		humanize: humanize,
		shots:    shots,
		log:      log,
	}
}

// PublishListing fills and publishes one listing for the profile's
// currently assigned index. Any error leaves the listing unrecorded.
func (f *Filler) PublishListing(ctx context.Context, profile *gologin.Profile) error {
	if !profile.HasListing() {
		return fmt.Errorf("%w: profile %s", listing.ErrNoListingAssigned, profile.ID)
	}

	title, err := f.corpus.Title(profile.ListingIndex())
	if err != nil {
		return err
	}
	f.log.Infof("📝 New listing #%d (%s) started by %s", profile.ListingIndex(), title, profile.Name)

	steps := []struct {
		name string
		run  func() error
	}{
		{"open new listing", f.openNewListing},
		{"add images", func() error { return f.addImages(profile.ListingIndex()) }},
		{"add title", func() error { return f.addTitle(title) }},
		{"add price", f.addPrice},
		{"select category", f.addCategory},
		{"select condition", f.addCondition},
		{"add description", func() error { return f.addDescription(profile.ListingIndex()) }},
		{"choose list as", f.chooseListAs},
		{"add sku", f.addSKU},
		{"add location", func() error { return f.addLocation(profile.ListingIndex()) }},
		{"set checkboxes", f.clickCheckboxes},
		{"click next", f.clickNext},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.run(); err != nil {
			f.shots.CaptureAndLog(f.session.Page(), "publish-"+profile.ID,
				fmt.Sprintf("🚨 Publish step '%s' failed for profile %s: %v", step.name, profile.Name, err))
			return fmt.Errorf("%s: %w", step.name, err)
		}
		f.humanize.Delay()
	}

	if err := f.clickPublish(); err != nil {
		f.shots.CaptureAndLog(f.session.Page(), "publish-"+profile.ID,
			fmt.Sprintf("🚨 Publish click failed for profile %s: %v", profile.Name, err))
		return fmt.Errorf("click publish: %w", err)
	}

	if err := f.ledger.RecordFor(profile); err != nil {
		return fmt.Errorf("record posted listing: %w", err)
	}

	f.log.Infof("🎉 Listing '%s' was posted by profile '%s'.", title, profile.Name)
	return nil
}

func (f *Filler) openNewListing() error {
	page := f.session.Page()

	if _, err := page.Goto(newListingURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(60000),
	}); err != nil {
		return fmt.Errorf("could not open selling page: %w", err)
	}
	f.humanize.Delay()
	browser.MouseJiggle(page)
	browser.SmoothScroll(page)

	if err := f.waitAndClick(f.sel.NewListing, "'Create New Listing'"); err != nil {
		return err
	}
	f.humanize.Delay()

	return f.waitAndClick(f.sel.ItemForSale, "'Item For Sale'")
}

func (f *Filler) addImages(index int) error {
	photosDir := filepath.Join(f.cfg.PhotosDir, fmt.Sprint(index))

	entries, err := os.ReadDir(photosDir)
	if err != nil {
		return fmt.Errorf("could not read photos dir %s: %w", photosDir, err)
	}

	var photos []string
	for _, e := range entries {
		if !e.IsDir() {
			photos = append(photos, filepath.Join(photosDir, e.Name()))
		}
	}
	sort.Strings(photos)
	if len(photos) > maxPhotos {
		photos = photos[:maxPhotos]
	}
	if len(photos) == 0 {
		return fmt.Errorf("no photos found in %s", photosDir)
	}

	input := f.session.Page().Locator(f.sel.ImageInput)
	if err := input.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(waitTimeoutMs),
	}); err != nil {
		return fmt.Errorf("image input not found: %w", err)
	}

	for _, photo := range photos {
		if err := input.SetInputFiles(photo); err != nil {
			return fmt.Errorf("could not upload %s: %w", photo, err)
		}
		f.log.Infof("🖼️ Image '%s' was added to the listing", photo)
		f.humanize.Delay()
	}
	return nil
}

func (f *Filler) addTitle(title string) error {
	if err := f.typeInto(f.sel.Title, title, "title"); err != nil {
		return err
	}
	f.log.Infof("✏️ Title set as '%s'", title)
	return nil
}

func (f *Filler) addPrice() error {
	price := f.cfg.ListingForm.Price
	if price == "" {
		return fmt.Errorf("listing price not set, this field is required")
	}
	if err := f.typeInto(f.sel.Price, price, "price"); err != nil {
		return err
	}
	f.log.Infof("💲 Price set %s", price)
	return nil
}

func (f *Filler) addCategory() error {
	category := f.cfg.ListingForm.Category
	if category == "" {
		return fmt.Errorf("category not selected, this field is required")
	}

	if err := f.waitAndClick(f.sel.CategoryButton, "category button"); err != nil {
		return err
	}
	f.humanize.Delay()

	option := fmt.Sprintf(f.sel.CategoryOption, category)
	if err := f.waitAndClick(option, fmt.Sprintf("category '%s'", category)); err != nil {
		return err
	}
	f.log.Infof("📂 Category '%s' was selected.", category)
	f.humanize.Delay()

	if len(f.cfg.ListingForm.SubCategories) > 0 {
		if err := f.selectSubCategories(); err != nil {
			return err
		}
	}

	f.addCategoryFields(category)
	f.addProductTags()
	return nil
}

func (f *Filler) selectSubCategories() error {
	for _, sub := range f.cfg.ListingForm.SubCategories {
		option := fmt.Sprintf(f.sel.CategoryOption, sub)
		if err := f.waitAndClick(option, fmt.Sprintf("subcategory '%s'", sub)); err != nil {
			return err
		}
		f.log.Infof("📂 SubCategory '%s' was selected.", sub)
		f.humanize.Delay()
	}
	return nil
}

// addCategoryFields fills the extra inputs some categories expose.
// These are best-effort: the form renders them inconsistently, so a
// missing field is logged and skipped rather than failing the publish.
func (f *Filler) addCategoryFields(category string) {
	form := f.cfg.ListingForm

	switch category {
	case categoryFurniture:
		f.selectDropdown("Bed size", form.BedSize)
		f.selectDropdown("Bed type", form.BedType)
		f.typeLabeled("Colour", form.Color)
		f.typeLabeled("Brand", form.Brand)
	case categoryHousehold:
		f.typeLabeled("Colour", form.Color)
	case categoryArtsAndCrafts:
		f.typeLabeled("Brand", form.Brand)
	}
}

func (f *Filler) selectDropdown(label, value string) {
	if value == "" {
		return
	}
	button := fmt.Sprintf(f.sel.DropdownButton, label)
	if err := f.waitAndClick(button, fmt.Sprintf("'%s' dropdown", label)); err != nil {
		f.log.Errorf("⚠️ %v", err)
		return
	}
	f.humanize.Delay()

	option := fmt.Sprintf(f.sel.DropdownOption, value)
	if err := f.waitAndClick(option, fmt.Sprintf("'%s' option '%s'", label, value)); err != nil {
		f.log.Errorf("⚠️ %v", err)
		return
	}
	f.log.Infof("🔽 %s '%s' was selected.", label, value)
	f.humanize.Delay()
}

func (f *Filler) typeLabeled(label, value string) {
	if value == "" {
		return
	}
	selector := fmt.Sprintf(f.sel.LabeledInput, label)
	if err := f.typeInto(selector, value, label); err != nil {
		f.log.Errorf("⚠️ %v", err)
		return
	}
	f.log.Infof("⌨️ %s '%s' was added to the input field.", label, value)
	f.humanize.Delay()
}

func (f *Filler) addCondition() error {
	condition := f.cfg.ListingForm.Condition
	if condition == "" {
		return fmt.Errorf("condition not selected, this field is required")
	}

	if err := f.waitAndClick(f.sel.ConditionButton, "condition button"); err != nil {
		return err
	}
	f.humanize.Delay()

	option := fmt.Sprintf(f.sel.ConditionOption, condition)
	if err := f.waitAndClick(option, fmt.Sprintf("condition '%s'", condition)); err != nil {
		return err
	}
	f.log.Infof("🏷️ Condition was selected as %s.", condition)
	return nil
}

func (f *Filler) addDescription(index int) error {
	descriptions, err := listing.LoadLines(f.cfg.DescriptionsPath)
	if err != nil {
		return fmt.Errorf("could not read descriptions file: %w", err)
	}
	if index < 0 || index >= len(descriptions) {
		return fmt.Errorf("%w: no description line %d", listing.ErrInvalidIndex, index)
	}

	if err := f.typeInto(f.sel.Description, descriptions[index], "description"); err != nil {
		return err
	}
	f.log.Infof("📄 Description set for listing %d", index)
	return nil
}

func (f *Filler) chooseListAs() error {
	value := f.cfg.ListingForm.ListAsSingleItem
	if value == "" {
		f.log.Warn("⚠️ list_as_single_item not set. Skipping this step.")
		return nil
	}

	if err := f.waitAndClick(f.sel.ListAsButton, "'List As' dropdown"); err != nil {
		return err
	}
	f.humanize.Delay()

	option := fmt.Sprintf(f.sel.ListAsOption, value)
	if err := f.waitAndClick(option, fmt.Sprintf("'List As' option '%s'", value)); err != nil {
		return err
	}
	f.log.Infof("🔽 Value '%s' was selected from the 'List As' dropdown.", value)
	return nil
}

func (f *Filler) addSKU() error {
	sku := f.cfg.ListingForm.SKU
	if sku == "" {
		return nil
	}
	if err := f.typeInto(f.sel.SKU, sku, "SKU"); err != nil {
		return err
	}
	f.log.Infof("🔢 SKU %s was added.", sku)
	return nil
}

// addProductTags is best-effort: a tag that fails to add is logged and
// skipped, it never fails the publish.
func (f *Filler) addProductTags() {
	tags := f.cfg.ListingForm.ProductTags
	if len(tags) == 0 {
		f.log.Info("ℹ️ No tags chosen.")
		return
	}
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	for _, tag := range tags {
		if err := f.typeInto(f.sel.TagsInput, tag, fmt.Sprintf("tag '%s'", tag)); err != nil {
			f.log.Errorf("⚠️ Error while adding tag %s: %v", tag, err)
			continue
		}
		if err := f.waitAndClick(f.sel.TagsAddButton, "tag add button"); err != nil {
			f.log.Errorf("⚠️ Error while adding tag %s: %v", tag, err)
			continue
		}
		f.log.Infof("🏷️ Tag '%s' was added.", tag)
		f.humanize.Delay()
	}
}

func (f *Filler) addLocation(index int) error {
	locations, err := listing.LoadLines(f.cfg.LocationsPath)
	if err != nil {
		return fmt.Errorf("could not read locations file: %w", err)
	}
	if index < 0 || index >= len(locations) {
		return fmt.Errorf("%w: no location line %d", listing.ErrInvalidIndex, index)
	}
	location := locations[index]

	if err := f.typeInto(f.sel.Location, location, "location"); err != nil {
		return err
	}
	f.humanize.Delay()

	if err := f.waitAndClick(f.sel.LocationOption, "location suggestion"); err != nil {
		return err
	}
	f.log.Infof("📍 Location %s was selected.", location)
	return nil
}

// clickCheckboxes toggles the delivery/visibility options enabled in
// config. Checkbox failures are logged and skipped; none are required
// to publish.
func (f *Filler) clickCheckboxes() error {
	form := f.cfg.ListingForm
	boxes := []struct {
		enabled bool
		label   string
	}{
		{form.PublicMeetup, labelPublicMeetup},
		{form.DoorPickup, labelDoorPickup},
		{form.DoorDropoff, labelDoorDropoff},
		{form.BoostAfterPublish, labelBoostAfterPublish},
		{form.HideFromFriends, labelHideFromFriends},
	}

	for _, box := range boxes {
		if !box.enabled {
			continue
		}
		selector := fmt.Sprintf(f.sel.Checkbox, box.label)
		if err := f.waitAndClick(selector, fmt.Sprintf("checkbox '%s'", box.label)); err != nil {
			f.log.Errorf("⚠️ %v", err)
			continue
		}
		f.log.Infof("☑️ %s was clicked.", box.label)
		f.humanize.Delay()
	}
	return nil
}

func (f *Filler) clickNext() error {
	if err := f.waitAndClick(f.sel.NextButton, "'Next' button"); err != nil {
		return err
	}
	f.log.Info("➡️ Clicked the 'Next' button successfully.")
	return nil
}

func (f *Filler) clickPublish() error {
	if err := f.waitAndClick(f.sel.PublishButton, "'Publish' button"); err != nil {
		return err
	}
	f.log.Info("🚀 Clicked the 'Publish' button.")
	return nil
}

func (f *Filler) waitAndClick(selector, what string) error {
	locator := f.session.Page().Locator(selector)
	if err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(waitTimeoutMs),
	}); err != nil {
		return fmt.Errorf("%s not found (%s): %w", what, selector, err)
	}
	if err := locator.Click(); err != nil {
		return fmt.Errorf("could not click %s: %w", what, err)
	}
	return nil
}

func (f *Filler) typeInto(selector, text, what string) error {
	locator := f.session.Page().Locator(selector)
	if err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(waitTimeoutMs),
	}); err != nil {
		return fmt.Errorf("%s field not found (%s): %w", what, selector, err)
	}
	if err := locator.Click(); err != nil {
		return fmt.Errorf("could not focus %s field: %w", what, err)
	}
	if err := locator.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Delay: playwright.Float(90),
	}); err != nil {
		return fmt.Errorf("could not type %s: %w", what, err)
	}
	return nil
}
