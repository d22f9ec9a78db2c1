package models

import "time"

// Business maps a WhatsApp phone number id to the RapidPro channel that runs its flows.
type Business struct {
	ID               string    `bson:"_id" json:"id"`
	Name             string    `bson:"name" json:"name" binding:"required"`
	OwnerID          string    `bson:"owner_id" json:"owner_id" binding:"required"`
	BusinessID       string    `bson:"business_id" json:"business_id" binding:"required"`
	PhoneNumber      string    `bson:"phone_number" json:"phone_number" binding:"required"`
	RapidProChannel  string    `bson:"rapid_pro_channel" json:"rapid_pro_channel" binding:"required"`
	SubscriptionPlan string    `bson:"subscription_plan" json:"subscription_plan" binding:"required"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
