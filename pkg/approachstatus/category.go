package approachstatus

// Category is the outcome of classifying a single approach status string.
type Category string

const (
	CategoryCountdown        Category = "countdown"
	CategoryImminent         Category = "imminent"
	CategoryDeparted         Category = "departed"
	CategoryPossiblyDeparted Category = "possibly_departed"
	CategoryOnSchedule       Category = "on_schedule"
	CategoryPossibleDelay    Category = "possible_delay"
	CategoryScheduleUnknown  Category = "schedule_unknown"
	CategoryUnknown          Category = "unknown"
)

// Display labels shown next to a bus when no minute countdown is generated.
const (
	LabelImminent         = "まもなく発車"
	LabelDeparted         = "出発済み"
	LabelPossiblyDeparted = "発車済みのおそれあり"
	LabelPossibleDelay    = "遅延可能性あり"
	LabelScheduled        = "予定"
)

// Phrases used by the upstream approach page.
var (
	imminentPhrases = []string{"まもなく発車", "まもなく到着"}
	departedPhrases = []string{"通過しました", "出発しました", "発車しました"}
)

const (
	onSchedulePhrase    = "予定通り"
	possibleDelayPhrase = "頃発車"
	scheduledPhrase     = "発予定"
)
