package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrAlreadyReported = errors.New("el post ya fue reportado por esta identidad")

// ReportTally representa el documento completo en la colección "reports".
// One record per post; the two reporter sets are keyed by identity uuid.
type ReportTally struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	PostID              string             `bson:"postId" json:"postId"`
	PostURL             string             `bson:"postUrl,omitempty" json:"postUrl,omitempty"`
	ReportedAsSpamBy    []string           `bson:"ReportedSpam" json:"ReportedSpam"`
	ReportedAsNotUseful []string           `bson:"ReportedNotUseful" json:"ReportedNotUseful"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewReportTally creates the tally for a previously unseen post
func NewReportTally(postID, postURL string) *ReportTally {
	return &ReportTally{
		ID:                  primitive.NewObjectID(),
		PostID:              postID,
		PostURL:             postURL,
		ReportedAsSpamBy:    []string{},
		ReportedAsNotUseful: []string{},
		CreatedAt:           time.Now(),
	}
}

// reporterSet returns the reporter set for a report type
func (r *ReportTally) reporterSet(reportType ReportType) *[]string {
	if reportType == ReportTypeSpam {
		return &r.ReportedAsSpamBy
	}
	return &r.ReportedAsNotUseful
}

// AddReporter records that an identity reported this post under a reason.
// The same identity reporting the same reason twice is rejected, not
// duplicated.
func (r *ReportTally) AddReporter(uuid string, reportType ReportType) error {
	set := r.reporterSet(reportType)
	for _, id := range *set {
		if id == uuid {
			return ErrAlreadyReported
		}
	}
	*set = append(*set, uuid)
	return nil
}

// HasReporter reports whether an identity already reported under a reason
func (r *ReportTally) HasReporter(uuid string, reportType ReportType) bool {
	for _, id := range *r.reporterSet(reportType) {
		if id == uuid {
			return true
		}
	}
	return false
}
