package database

import (
	"errors"

	"github.com/VigiaStudios/VigiaGuardGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

var ErrReportManagerNotInitialized = errors.New("report data manager not initialized")

func getReportManager() (*DataManager[models.ReportTally], error) {
	if GlobalReportDM == nil {
		return nil, ErrReportManagerNotInitialized
	}
	return GlobalReportDM, nil
}

// GetReportTally returns the tally for a post, or nil if the post was
// never reported.
func GetReportTally(postID string) (*models.ReportTally, error) {
	dm, err := getReportManager()
	if err != nil {
		return nil, err
	}
	return dm.Get(bson.M{"postId": postID})
}

// AddReportTally records that an identity reported a post under a reason.
// The tally is created on the first report of a previously unseen post and
// is never deleted afterwards. Returns the tally document id.
func AddReportTally(uuid, postID, postURL string, reportType models.ReportType) (string, error) {
	dm, err := getReportManager()
	if err != nil {
		return "", err
	}

	tally, err := dm.Get(bson.M{"postId": postID})
	if err != nil {
		return "", err
	}

	if tally == nil {
		tally = models.NewReportTally(postID, postURL)
	}

	if err := tally.AddReporter(uuid, reportType); err != nil {
		return "", err
	}

	if _, err := dm.Set(bson.M{"postId": postID}, tally); err != nil {
		return "", err
	}
	return tally.ID.Hex(), nil
}
