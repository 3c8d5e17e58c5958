package task

import "fmt"

// Catalog is the immutable set of task definitions.
type Catalog struct {
	defs [Count]Definition
}

// NewCatalog builds the catalog. username and password are the Basic Auth
// credentials shown in the hints for tasks 2 and 3.
func NewCatalog(username, password string) *Catalog {
	return &Catalog{defs: [Count]Definition{
		{
			ID:          HelloWorld,
			Title:       "Hello World",
			Subtitle:    "Make a GET request",
			Description: "Make a <strong>GET</strong> request to your endpoint.",
			Hint:        "GET /api/player/{your-id}/task1",
			Icon:        "🌐",
		},
		{
			ID:          Authenticated,
			Title:       "Authenticated",
			Subtitle:    "GET with Basic Auth",
			Description: "Make a <strong>GET</strong> request with <strong>Basic Auth</strong>.",
			Hint: fmt.Sprintf(
				"GET /api/player/{your-id}/task2<br>Username: <code>%s</code> &nbsp; Password: <code>%s</code>",
				username, password),
			Icon: "🔐",
		},
		{
			ID:          SaySomething,
			Title:       "Say Something",
			Subtitle:    "Authenticated POST with message",
			Description: "Make an authenticated <strong>POST</strong> request with a JSON body containing a <code>message</code> field.",
			Hint:        `POST /api/player/{your-id}/task3<br>Basic Auth + Body: <code>{ "message": "your text" }</code>`,
			Icon:        "💬",
		},
		{
			ID:          SpeedRound,
			Title:       "Speed Round",
			Subtitle:    "First to 4 POST requests",
			Description: "First player to make <strong>4 POST requests</strong> wins! Progress is tracked live.",
			Hint:        "POST /api/player/{your-id}/task4<br>Any body works. First to 4 wins!",
			Icon:        "⚡",
		},
		{
			ID:          SecretKey,
			Title:       "Secret Key",
			Subtitle:    "GET a key, then POST it back",
			Description: "First <strong>GET</strong> a secret key, then <strong>POST</strong> it back.",
			Hint:        `GET /api/player/{your-id}/task5/key → receive a key<br>POST /api/player/{your-id}/task5 with <code>{ "key": "..." }</code>`,
			Icon:        "🗝️",
		},
		{
			ID:          PictureTime,
			Title:       "Picture Time",
			Subtitle:    "Send a base64 image",
			Description: "Send a <strong>POST</strong> request with a <strong>base64-encoded image</strong>.",
			Hint:        `POST /api/player/{your-id}/task6<br>Body: <code>{ "image": "data:image/png;base64,..." }</code>`,
			Icon:        "🖼️",
		},
	}}
}

// All returns the definitions in id order. The slice is a copy.
func (c *Catalog) All() []Definition {
	out := make([]Definition, Count)
	copy(out, c.defs[:])
	return out
}

// Get returns the definition for id.
func (c *Catalog) Get(id ID) (Definition, bool) {
	if !id.Valid() {
		return Definition{}, false
	}
	return c.defs[id-First], true
}
