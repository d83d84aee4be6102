package views

// VendorCategories is the fixed list of labels a vendor may sell under.
var VendorCategories = []string{
	"Sanchi Stupa",
	"Warli House",
	"Tiger Crafting",
	"Bamboo Peacock",
	"Miniaure Ship",
	"Bamboo Trophy",
	"Bamboo Ganesha",
	"Bamboo Swords",
	"Tribal Mask -1",
	"Tribal Mask -2",
	"Bamboo Dry Fruit Tray",
	"Bamboo Tissue Paper Holder",
	"Bamboo Strip Tray",
	"Bamboo Mobile Booster",
	"Bamboo Card-Pen Holder",
}

var vendorCategorySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(VendorCategories))
	for _, c := range VendorCategories {
		set[c] = struct{}{}
	}
	return set
}()

// IsVendorCategory reports whether label is one of VendorCategories.
func IsVendorCategory(label string) bool {
	_, ok := vendorCategorySet[label]
	return ok
}
