package models

type Category string

const (
	CategoryBeach      Category = "Beach"
	CategoryMountain   Category = "Mountain"
	CategoryCity       Category = "City"
	CategoryCultural   Category = "Cultural"
	CategoryAdventure  Category = "Adventure"
	CategoryRelaxation Category = "Relaxation"
)

var Categories = []Category{
	CategoryBeach, CategoryMountain, CategoryCity,
	CategoryCultural, CategoryAdventure, CategoryRelaxation,
}

type Region string

const (
	RegionAsia         Region = "Asia"
	RegionEurope       Region = "Europe"
	RegionNorthAmerica Region = "North America"
	RegionSouthAmerica Region = "South America"
	RegionAfrica       Region = "Africa"
	RegionOceania      Region = "Oceania"
)

var Regions = []Region{
	RegionAsia, RegionEurope, RegionNorthAmerica,
	RegionSouthAmerica, RegionAfrica, RegionOceania,
}

func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func ValidRegion(r Region) bool {
	for _, known := range Regions {
		if r == known {
			return true
		}
	}
	return false
}

type Destination struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Country     string     `json:"country"`
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl"`
	Rating      string     `json:"rating,omitempty"`
	PriceLevel  int        `json:"priceLevel"`
	Categories  []Category `json:"categories"`
	Region      Region     `json:"region"`
}

func (d Destination) HasAnyCategory(categories []Category) bool {
	for _, want := range categories {
		for _, have := range d.Categories {
			if want == have {
				return true
			}
		}
	}
	return false
}

// DestinationSummary is embedded in tallies and buddy views.
type DestinationSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	ImageURL string `json:"imageUrl"`
}

func (d Destination) Summary() DestinationSummary {
	return DestinationSummary{ID: d.ID, Name: d.Name, Country: d.Country, ImageURL: d.ImageURL}
}

type HotelOption struct {
	Name        string `json:"name"`
	Stars       int    `json:"stars"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"imageUrl"`
}

type TravelTips struct {
	Safety       []string `json:"safety"`
	LocalCustoms []string `json:"localCustoms"`
	Food         []string `json:"food"`
}

type Costs struct {
	Accommodation  string `json:"accommodation"`
	Meals          string `json:"meals"`
	Transportation string `json:"transportation"`
	Activities     string `json:"activities"`
}

type Highlight struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

type DestinationDetail struct {
	ID              int64         `json:"id"`
	DestinationID   int64         `json:"destinationId"`
	BestTimeToVisit string        `json:"bestTimeToVisit,omitempty"`
	Attractions     []string      `json:"attractions,omitempty"`
	HotelOptions    []HotelOption `json:"hotelOptions,omitempty"`
	TravelTips      *TravelTips   `json:"travelTips,omitempty"`
	Costs           *Costs        `json:"costs,omitempty"`
	Highlights      []Highlight   `json:"highlights,omitempty"`
}

// DestinationFilter narrows the destination listing. Empty fields match all.
type DestinationFilter struct {
	PriceLevels     []int
	Categories      []Category
	Region          Region
	ExcludeSwipedBy int64
}
