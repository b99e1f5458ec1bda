package market

// driver is the static definition an instrument is generated from.
type driver struct {
	id            string
	symbol        string
	name          string
	team          string
	price         float64
	previousPrice float64
	shares        int64
	historyBase   float64
}

var drivers = []driver{
	{"1", "VER", "Max Verstappen", "Red Bull Racing", 350.25, 349.75, 1000, 350},
	{"2", "PER", "Sergio Perez", "Red Bull Racing", 275.50, 278.25, 500, 275},
	{"3", "HAM", "Lewis Hamilton", "Mercedes", 310.75, 309.50, 750, 310},
	{"4", "LEC", "Charles Leclerc", "Ferrari", 330.00, 329.50, 300, 330},
	{"5", "NOR", "Lando Norris", "McLaren", 295.25, 290.00, 600, 295},
	{"6", "RUS", "George Russell", "Mercedes", 285.50, 288.75, 450, 285},
}
