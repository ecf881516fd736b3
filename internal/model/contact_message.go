package model

import "time"

// ContactMessage is a note left through the public contact form.
type ContactMessage struct {
    ID        uint64    `json:"id"`
    Name      string    `json:"name"`
    Email     string    `json:"email"`
    Message   string    `json:"message"`
    CreatedAt time.Time `json:"createdAt"`
}
