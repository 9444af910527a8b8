// SPDX-License-Identifier: EPL-2.0

package config

func catalogue() []Disc {
	return []Disc{
		{
			Name:   "Fissures in Green (2011)",
			Tracks: []string{"Rain at the Station", "Still Life with Cicadas, Waterfall and Radu", "Silent Prayer", "Langhalsen"},
		},
		{
			Name:   "Pathsplitter (Yellow-Red) (2012)",
			Tracks: []string{"Canon a2", "Canon a3", "Canon a4", "Canon a5"},
		},
		{
			Name:   "Landscape in Black and Grey (2013)",
			Tracks: []string{"The Chords of the Grosse Mühl", "Six-Part Panorama", "Building a World", "The Disappearance of a World"},
		},
		{
			Name:   "White Light Under the Door (2014)",
			Tracks: []string{"Electricity", "Heat", "Light", "Gas"},
		},
		{
			Name:   "Hellgrün (Small New World) (2015)",
			Tracks: []string{"Malachite", "Bird Warnings", "The River is a Green-Brown God", "Emerald Twilight"},
		},
	}
}
