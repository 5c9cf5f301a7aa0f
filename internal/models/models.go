package models

import "time"

// Message types stored in messages.type.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypePDF   = "pdf"
	MessageTypeFile  = "file"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"user_id"`
	Email        string    `gorm:"uniqueIndex;size:190;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FullName     string    `gorm:"size:120;not null" json:"full_name"`
	University   *string   `gorm:"size:190" json:"university,omitempty"`
	Department   *string   `gorm:"size:190" json:"department,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`

	Profile *Profile `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Profile struct {
	ID             uint    `gorm:"primaryKey" json:"profile_id"`
	UserID         uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio            *string `gorm:"type:text" json:"bio"`
	ProfilePicture *string `gorm:"size:255" json:"profile_picture"`
}

type Room struct {
	ID        uint      `gorm:"primaryKey" json:"room_id"`
	Name      string    `gorm:"size:128;not null" json:"room_name"`
	SubjectID *uint     `gorm:"index" json:"subject_id"`
	IsPublic  bool      `gorm:"not null;default:true" json:"is_public"`
	CreatedBy uint      `gorm:"index;not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	Subject *Subject `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Creator *User    `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE" json:"-"`
}

// RoomParticipant links a user to a room. The composite unique index keeps
// joins idempotent even under concurrent requests.
type RoomParticipant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"uniqueIndex:idx_room_user;not null" json:"room_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_room_user;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Room *Room `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Message is immutable once created; there is no edit or delete endpoint.
type Message struct {
	ID       uint      `gorm:"primaryKey" json:"message_id"`
	RoomID   uint      `gorm:"index:idx_msg_room;not null" json:"room_id"`
	SenderID uint      `gorm:"index;not null" json:"sender_id"`
	Type     string    `gorm:"size:16;not null;default:text" json:"message_type"`
	Text     *string   `gorm:"type:text" json:"message_text"`
	FileURL  *string   `gorm:"size:255" json:"file_url"`
	SentAt   time.Time `gorm:"autoCreateTime;index" json:"sent_at"`
	Edited   bool      `gorm:"not null;default:false" json:"edited"`

	Room   *Room `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Sender *User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
}

// Report is append-only. The reporter is nullable so reports survive the
// reporting account's deletion.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"report_id"`
	MessageID  uint      `gorm:"index;not null" json:"message_id"`
	ReportedBy *uint     `gorm:"index" json:"reported_by"`
	Reason     *string   `gorm:"type:text" json:"reason"`
	CreatedAt  time.Time `json:"created_at"`

	Message  *Message `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Reporter *User    `gorm:"foreignKey:ReportedBy;constraint:OnDelete:SET NULL" json:"-"`
}

type Subject struct {
	ID          uint    `gorm:"primaryKey" json:"subject_id"`
	Name        string  `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
}

type UserSubject struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_user_subject;not null" json:"user_id"`
	SubjectID uint `gorm:"uniqueIndex:idx_user_subject;not null" json:"subject_id"`

	User    *User    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Subject *Subject `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Token     string    `gorm:"uniqueIndex;size:128;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	RevokedAt *time.Time
	CreatedAt time.Time
}
