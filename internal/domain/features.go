package domain

// FeatureGroups classifies the columns a report looks at. Channel groups only
// list channels installed somewhere in the dataset; weather and energy are
// always complete.
type FeatureGroups struct {
	Rooms      []Channel
	Appliances []Channel
	Lighting   []Channel
	Weather    []string
	Energy     []string
}

// ResolveFeatures determines which channels the frame can report on. A channel
// is available when the frame carries its present column and at least one
// row sets it, regardless of the raw values in the channel column.
func ResolveFeatures(f Frame) FeatureGroups {
	return FeatureGroups{
		Rooms:      availableChannels(f, roomChannels[:]),
		Appliances: availableChannels(f, applianceChannels[:]),
		Lighting:   availableChannels(f, lightingChannels[:]),
		Weather:    WeatherColumns(),
		Energy:     EnergyColumns(),
	}
}

func availableChannels(f Frame, taxonomy []Channel) []Channel {
	out := []Channel{}
	for _, c := range taxonomy {
		if f.PresentAnywhere(c) {
			out = append(out, c)
		}
	}
	return out
}

// BaselineColumns lists the columns the rolling baseline averages, in order:
// energy, rooms, appliances, lighting, then weather.
func (g FeatureGroups) BaselineColumns() []string {
	out := append([]string(nil), g.Energy...)
	out = append(out, channelStrings(g.Rooms)...)
	out = append(out, channelStrings(g.Appliances)...)
	out = append(out, channelStrings(g.Lighting)...)
	return append(out, g.Weather...)
}

// BucketFeatures lists the columns averaged per time bucket.
func (g FeatureGroups) BucketFeatures() []string {
	out := []string{ColTotalEnergy}
	out = append(out, channelStrings(g.Rooms)...)
	return append(out, channelStrings(g.Appliances)...)
}

func channelStrings(cs []Channel) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
