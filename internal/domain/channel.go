package domain

// Section groups channels on the settings screen.
type Section string

const (
	SectionHealth   Section = "health"
	SectionMeals    Section = "meals"
	SectionPlanning Section = "planning"
	SectionEngage   Section = "engage"
)

// EngageOffsetMinutes is how far an engage channel trails the channel it adapts to.
const EngageOffsetMinutes = 30

// Channel is a compiled-in reminder definition.
type Channel struct {
	Key            string
	NotificationID int
	Label          string
	Body           string
	Emoji          string
	DefaultTime    string
	Section        Section
	DisplayChannel string
	Weekday        int    // 1=Sunday..7; 0 means daily
	AdaptsTo       string // key of the channel this one's time is derived from
}

// IsEngage reports whether the channel's time is derived rather than stored.
func (c Channel) IsEngage() bool { return c.AdaptsTo != "" }

// Title is the alert headline shown by the gateway.
func (c Channel) Title() string {
	if c.Emoji == "" {
		return c.Label
	}
	return c.Emoji + " " + c.Label
}

var catalog = []Channel{
	{
		Key: "weigh_in", NotificationID: 101, Emoji: "⚖️", Label: "Morning weigh-in",
		Body: "Step on the scale before breakfast.", DefaultTime: "07:30",
		Section: SectionHealth, DisplayChannel: "health",
	},
	{
		Key: "sleep_log", NotificationID: 102, Emoji: "😴", Label: "Log your sleep",
		Body: "How did you sleep last night?", DefaultTime: "09:00",
		Section: SectionHealth, DisplayChannel: "health",
	},
	{
		Key: "bedtime", NotificationID: 103, Emoji: "🌙", Label: "Bedtime",
		Body: "Time to wind down for the night.", DefaultTime: "22:30",
		Section: SectionHealth, DisplayChannel: "health",
	},
	{
		Key: "breakfast", NotificationID: 104, Emoji: "🍳", Label: "Log breakfast",
		Body: "What did you have for breakfast?", DefaultTime: "08:30",
		Section: SectionMeals, DisplayChannel: "meals",
	},
	{
		Key: "lunch", NotificationID: 105, Emoji: "🥗", Label: "Log lunch",
		Body: "Don't forget to log your lunch.", DefaultTime: "13:00",
		Section: SectionMeals, DisplayChannel: "meals",
	},
	{
		Key: "dinner", NotificationID: 106, Emoji: "🍲", Label: "Log dinner",
		Body: "Add tonight's dinner to your diary.", DefaultTime: "19:00",
		Section: SectionMeals, DisplayChannel: "meals",
	},
	{
		Key: "meal_plan", NotificationID: 107, Emoji: "🗓️", Label: "Plan the week's meals",
		Body: "Pick recipes for the coming week.", DefaultTime: "10:00",
		Section: SectionPlanning, DisplayChannel: "planning", Weekday: 1,
	},
	{
		Key: "grocery_list", NotificationID: 108, Emoji: "🛒", Label: "Grocery list",
		Body: "Your shopping list is ready to review.", DefaultTime: "17:00",
		Section: SectionPlanning, DisplayChannel: "planning", Weekday: 7,
	},
	{
		Key: "morning_boost", NotificationID: 109, Emoji: "🔥", Label: "Morning boost",
		Body: "Keep the streak alive: log something today.", DefaultTime: "08:00",
		Section: SectionEngage, DisplayChannel: "engage", AdaptsTo: "weigh_in",
	},
	{
		Key: "lunch_checkin", NotificationID: 110, Emoji: "⭐", Label: "Midday check-in",
		Body: "Halfway through the day. How are your goals going?", DefaultTime: "13:30",
		Section: SectionEngage, DisplayChannel: "engage", AdaptsTo: "lunch",
	},
	{
		Key: "evening_recap", NotificationID: 111, Emoji: "🏆", Label: "Evening recap",
		Body: "See today's XP and close out your day.", DefaultTime: "19:30",
		Section: SectionEngage, DisplayChannel: "engage", AdaptsTo: "dinner",
	},
}

// Catalog returns every channel in display order. The slice is a copy.
func Catalog() []Channel {
	out := make([]Channel, len(catalog))
	copy(out, catalog)
	return out
}

// ChannelByKey looks up a catalog entry.
func ChannelByKey(key string) (Channel, bool) {
	for _, c := range catalog {
		if c.Key == key {
			return c, true
		}
	}
	return Channel{}, false
}

// DependentsOf returns the engage channels whose time adapts to key.
func DependentsOf(key string) []Channel {
	var out []Channel
	for _, c := range catalog {
		if c.AdaptsTo == key {
			out = append(out, c)
		}
	}
	return out
}
