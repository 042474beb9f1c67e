package ctdf

// RouteQuery is one origin/destination stop pair polled on the approach page
type RouteQuery struct {
	Key            string `yaml:"key"`
	FromStopCode   string `yaml:"from"`
	ToStopCode     string `yaml:"to"`
	OriginStopName string `yaml:"origin_name"`
}
