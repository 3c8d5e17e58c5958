package task

import "fmt"

// ID identifies one of the six challenge tasks.
type ID int

// Task identifiers, in the order they are run.
const (
	HelloWorld    ID = 1 // plain GET
	Authenticated ID = 2 // GET with Basic Auth
	SaySomething  ID = 3 // authenticated POST with a message
	SpeedRound    ID = 4 // first to four POSTs
	SecretKey     ID = 5 // GET a key, POST it back
	PictureTime   ID = 6 // POST a base64 image
)

// First and Last bound the valid task range.
const (
	First = HelloWorld
	Last  = PictureTime
)

// Count is the number of tasks in the catalog.
const Count = int(Last-First) + 1

// Valid reports whether id names a task.
func (id ID) Valid() bool {
	return id >= First && id <= Last
}

func (id ID) String() string {
	return fmt.Sprintf("task%d", int(id))
}

// Definition is the descriptive record the dashboard renders for a task.
// Description and Hint contain inline HTML.
type Definition struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Hint        string `json:"hint"`
	Icon        string `json:"icon"`
}
