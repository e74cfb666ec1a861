package models

// ShareClass is one line of a SPAC's cap table.
type ShareClass struct {
	Base
	OrganizationID string         `gorm:"type:uuid;not null;index" json:"organization_id"`
	SPACID         string         `gorm:"column:spac_id;type:uuid;not null;uniqueIndex:idx_share_class_spac_class" json:"spac_id"`
	Class          ShareClassKind `gorm:"not null;uniqueIndex:idx_share_class_spac_class" json:"class"`
	TotalShares    int64          `gorm:"not null;default:0" json:"total_shares"`
	VotingPower    float64        `gorm:"not null;default:0" json:"voting_power"`

	Holders []ShareHolder `gorm:"foreignKey:ShareClassID" json:"holders,omitempty"`
}

// ShareHolder owns part of a share class.
type ShareHolder struct {
	Base
	ShareClassID string     `gorm:"type:uuid;not null;index" json:"share_class_id"`
	Name         string     `gorm:"not null" json:"name"`
	HolderType   HolderType `gorm:"not null" json:"holder_type"`
	Shares       int64      `gorm:"not null" json:"shares"`
}
