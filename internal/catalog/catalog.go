package catalog

import "layer-backend/internal/models"

// LayerOption describes one selectable layer type within a category.
type LayerOption struct {
	Type    models.LayerType `json:"type"`
	Label   string           `json:"label"`
	Tagline string           `json:"tagline"`
}

// categories is the fixed presentation order.
var categories = []models.LayerCategory{
	models.CategoryMovement,
	models.CategoryCreative,
	models.CategoryFitness,
	models.CategoryIntellectual,
	models.CategoryNature,
	models.CategoryPerformer,
}

var options = map[models.LayerCategory][]LayerOption{
	models.CategoryMovement: {
		{Type: "runner", Label: "Runner", Tagline: "Marathon enthusiast"},
		{Type: "cyclist", Label: "Cyclist", Tagline: "Weekend rider"},
		{Type: "yogi", Label: "Yogi", Tagline: "Mindful movement"},
	},
	models.CategoryCreative: {
		{Type: "artist", Label: "Artist", Tagline: "Visual creator"},
		{Type: "musician", Label: "Musician", Tagline: "Music lover"},
		{Type: "writer", Label: "Writer", Tagline: "Storyteller"},
	},
	models.CategoryFitness: {
		{Type: "gym", Label: "Gym", Tagline: "Fitness focused"},
		{Type: "crossfit", Label: "CrossFit", Tagline: "High intensity"},
		{Type: "climbing", Label: "Climbing", Tagline: "Rock climber"},
	},
	models.CategoryIntellectual: {
		{Type: "reader", Label: "Reader", Tagline: "Book lover"},
		{Type: "gamer", Label: "Gamer", Tagline: "Gaming enthusiast"},
		{Type: "philosopher", Label: "Philosopher", Tagline: "Deep thinker"},
	},
	models.CategoryNature: {
		{Type: "hiker", Label: "Hiker", Tagline: "Trail explorer"},
		{Type: "surfer", Label: "Surfer", Tagline: "Wave rider"},
		{Type: "gardener", Label: "Gardener", Tagline: "Plant parent"},
	},
	models.CategoryPerformer: {
		{Type: "theater", Label: "Theater", Tagline: "Stage performer"},
		{Type: "comedy", Label: "Comedy", Tagline: "Stand-up comic"},
		{Type: "singer", Label: "Singer", Tagline: "Vocalist"},
	},
}

// typeToCategory is derived once from options.
var typeToCategory = func() map[models.LayerType]models.LayerCategory {
	m := make(map[models.LayerType]models.LayerCategory)
	for cat, opts := range options {
		for _, opt := range opts {
			m[opt.Type] = cat
		}
	}
	return m
}()

// ListCategories returns all layer categories in presentation order.
func ListCategories() []models.LayerCategory {
	out := make([]models.LayerCategory, len(categories))
	copy(out, categories)
	return out
}

// LayersFor returns the layer type descriptors for a category, in
// presentation order. The returned slice is nil for unknown categories.
func LayersFor(category models.LayerCategory) []LayerOption {
	opts, ok := options[category]
	if !ok {
		return nil
	}
	out := make([]LayerOption, len(opts))
	copy(out, opts)
	return out
}

// CategoryOf returns the category a layer type belongs to.
func CategoryOf(t models.LayerType) (models.LayerCategory, bool) {
	cat, ok := typeToCategory[t]
	return cat, ok
}

// ValidType reports whether t is a known layer type.
func ValidType(t models.LayerType) bool {
	_, ok := typeToCategory[t]
	return ok
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c models.LayerCategory) bool {
	_, ok := options[c]
	return ok
}
