package domain

// Channel identifies one sub-meter circuit of a house. The set is closed: any
// column a dataset carries that is not listed here is invisible to reporting.
type Channel int

const (
	Bathroom1 Channel = iota
	Bedroom1
	Bedroom2
	ClothesWasher1
	LivingRoom1
	Dishwasher1
	Garage1
	Kitchen1
	KitchenApp1
	KitchenApp2
	LightsPlugs1
	LightsPlugs2
	LightsPlugs3
	Microwave1
	Office1
	Range1
	Refrigerator1
	VentHood1
	Oven1

	// ChannelCount is the number of known channels.
	ChannelCount
)

var channelNames = [ChannelCount]string{
	Bathroom1:      "bathroom1",
	Bedroom1:       "bedroom1",
	Bedroom2:       "bedroom2",
	ClothesWasher1: "clotheswasher1",
	LivingRoom1:    "livingroom1",
	Dishwasher1:    "dishwasher1",
	Garage1:        "garage1",
	Kitchen1:       "kitchen1",
	KitchenApp1:    "kitchenapp1",
	KitchenApp2:    "kitchenapp2",
	LightsPlugs1:   "lights_plugs1",
	LightsPlugs2:   "lights_plugs2",
	LightsPlugs3:   "lights_plugs3",
	Microwave1:     "microwave1",
	Office1:        "office1",
	Range1:         "range1",
	Refrigerator1:  "refrigerator1",
	VentHood1:      "venthood1",
	Oven1:          "oven1",
}

// String returns the column name used by the smart-meter export.
func (c Channel) String() string {
	if c < 0 || c >= ChannelCount {
		return ""
	}
	return channelNames[c]
}

// PresentColumn returns the name of the column flagging whether the channel is installed.
func (c Channel) PresentColumn() string {
	return c.String() + PresentSuffix
}

// PresentSuffix marks installation-flag columns, e.g. "oven1_present".
const PresentSuffix = "_present"

// ParseChannel maps a column name to its Channel.
func ParseChannel(name string) (Channel, bool) {
	for c, n := range channelNames {
		if n == name {
			return Channel(c), true
		}
	}
	return 0, false
}

// AllChannels returns every channel in export column order.
func AllChannels() []Channel {
	out := make([]Channel, ChannelCount)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}

// Channel taxonomy in the fixed order reports list channels in.
var (
	roomChannels = [...]Channel{
		Bathroom1, Bedroom1, Bedroom2, LivingRoom1, Garage1, Kitchen1, Office1,
	}
	applianceChannels = [...]Channel{
		ClothesWasher1, Dishwasher1, KitchenApp1, KitchenApp2, Microwave1,
		Range1, Refrigerator1, VentHood1, Oven1,
	}
	lightingChannels = [...]Channel{
		LightsPlugs1, LightsPlugs2, LightsPlugs3,
	}
)

// Rooms returns a copy of the room channels.
func Rooms() []Channel { return append([]Channel(nil), roomChannels[:]...) }

// Appliances returns a copy of the appliance channels.
func Appliances() []Channel { return append([]Channel(nil), applianceChannels[:]...) }

// Lighting returns a copy of the lighting channels.
func Lighting() []Channel { return append([]Channel(nil), lightingChannels[:]...) }

// Weather and energy column names.
const (
	ColTotalEnergy = "total_energy"

	ColTemp = "temp"
	ColDwpt = "dwpt"
	ColRhum = "rhum"
	ColPrcp = "prcp"
	ColWdir = "wdir"
	ColWspd = "wspd"
	ColPres = "pres"
	ColCoco = "coco"
)

var weatherColumns = [...]string{ColTemp, ColDwpt, ColRhum, ColPrcp, ColWdir, ColWspd, ColPres, ColCoco}

// WeatherColumns returns the weather feature columns in taxonomy order.
func WeatherColumns() []string {
	out := make([]string, len(weatherColumns))
	copy(out, weatherColumns[:])
	return out
}

// EnergyColumns returns the whole-house energy columns.
func EnergyColumns() []string { return []string{ColTotalEnergy} }

var weatherDescriptions = map[int]string{
	1: "Clear", 2: "Fair", 3: "Cloudy", 4: "Overcast", 5: "Fog", 6: "Freezing Fog",
	7: "Light Rain", 8: "Rain", 9: "Heavy Rain", 10: "Freezing Rain", 11: "Heavy Freezing Rain",
	12: "Sleet", 13: "Heavy Sleet", 14: "Light Snowfall", 15: "Snowfall", 16: "Heavy Snowfall",
	17: "Rain Shower", 18: "Heavy Rain Shower", 19: "Sleet Shower", 20: "Heavy Sleet Shower",
	21: "Snow Shower", 22: "Heavy Snow Shower", 23: "Lightning", 24: "Hail", 25: "Thunderstorm",
	26: "Heavy Thunderstorm", 27: "Storm",
}

// UnknownWeather is returned for condition codes outside the lookup table.
const UnknownWeather = "Unknown"

// WeatherDescription maps a weather condition code (1-27) to its description.
func WeatherDescription(code int) string {
	if d, ok := weatherDescriptions[code]; ok {
		return d
	}
	return UnknownWeather
}
