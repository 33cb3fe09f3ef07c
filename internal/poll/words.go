package poll

import "math/rand/v2"

// randomWord returns one capitalized word for room id generation.
func randomWord() string {
	return idWords[rand.IntN(len(idWords))]
}

// idWords is the dictionary behind generated room ids. Three-word
// combinations give over four million distinct ids.
var idWords = []string{
	"Acorn", "Amber", "Anchor", "Apple", "Arrow", "Aspen", "Atlas", "Autumn",
	"Badger", "Bamboo", "Basil", "Beacon", "Berry", "Birch", "Bison", "Blossom",
	"Breeze", "Brook", "Bubble", "Butter", "Cactus", "Candle", "Canyon", "Carbon",
	"Cedar", "Cherry", "Cinder", "Citrus", "Clover", "Cobalt", "Comet", "Copper",
	"Coral", "Cotton", "Cricket", "Crystal", "Daisy", "Dapple", "Dawn", "Delta",
	"Drift", "Eagle", "Echo", "Ember", "Falcon", "Feather", "Fennel", "Fern",
	"Flint", "Forest", "Fox", "Frost", "Garnet", "Ginger", "Glacier", "Grove",
	"Harbor", "Hazel", "Heather", "Heron", "Hickory", "Hollow", "Honey", "Horizon",
	"Ivory", "Jasper", "Juniper", "Kestrel", "Lagoon", "Lantern", "Larch", "Laurel",
	"Lavender", "Lemon", "Lichen", "Lilac", "Linden", "Lotus", "Lunar", "Lynx",
	"Magnet", "Maple", "Marble", "Meadow", "Mellow", "Mesa", "Mint", "Mist",
	"Monsoon", "Moss", "Myrtle", "Nectar", "Nettle", "North", "Nutmeg", "Oasis",
	"Ocean", "Olive", "Onyx", "Opal", "Orbit", "Orchid", "Osprey", "Otter",
	"Pebble", "Pepper", "Petal", "Pine", "Pistachio", "Plume", "Pollen", "Poppy",
	"Prairie", "Prism", "Quartz", "Quill", "Raven", "Reed", "Ridge", "Ripple",
	"River", "Robin", "Rowan", "Ruby", "Rustic", "Saffron", "Sage", "Sandal",
	"Sapphire", "Sequoia", "Shadow", "Shell", "Sierra", "Silver", "Sorrel", "Sparrow",
	"Spruce", "Summit", "Sunset", "Swift", "Tamarind", "Tarragon", "Teal", "Tempest",
	"Thistle", "Thyme", "Timber", "Topaz", "Trellis", "Trout", "Tulip", "Tundra",
	"Umber", "Valley", "Velvet", "Violet", "Walnut", "Willow", "Winter", "Wren",
	"Yarrow", "Zephyr",
}
