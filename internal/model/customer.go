package model

import "time"

// CustomerProfile carries the returning-guest data the allocator uses
// for its tie-break rules.  Profiles are maintained by the back office
// and are read-only to the booking core.
//
// Fields:
//  ID              – UUID primary key.
//  Email           – guest email, matched case-insensitively against
//                    reservations.
//  IsVip           – VIP guests are steered to VIP tables first.
//  FavoriteTableID – optional preferred table, honored when free.
//  CreatedAt       – creation timestamp.
type CustomerProfile struct {
    ID              string    // customer_profiles.id (uuid)
    Email           string    // customer_profiles.email
    IsVip           bool      // customer_profiles.is_vip
    FavoriteTableID string    // customer_profiles.favorite_table_id (empty when unset)
    CreatedAt       time.Time // customer_profiles.created_at
}
