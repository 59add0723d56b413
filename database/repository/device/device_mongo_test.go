package deviceRepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoDeviceRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no identifiers skips the query", func(mt *mtest.T) {
		repo := &MongoDeviceRepo{coll: mt.Coll}

		devices, err := repo.FindByIdentifiers(context.Background(), nil, nil, nil)

		require.NoError(mt, err)
		assert.Empty(mt, devices)
	})

	mt.Run("find by identifiers decodes devices", func(mt *mtest.T) {
		repo := &MongoDeviceRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ose.devices", mtest.FirstBatch,
			bson.D{
				{Key: "device_id", Value: "d-1"},
				{Key: "imei", Value: "861888082667623"},
				{Key: "marca", Value: "Teltonika"},
				{Key: "pallet_id", Value: "PAL-1"},
			},
		))

		devices, err := repo.FindByIdentifiers(context.Background(), []string{"861888082667623"}, nil, nil)

		require.NoError(mt, err)
		require.Len(mt, devices, 1)
		assert.Equal(mt, "Teltonika", devices[0].Marca)
		assert.False(mt, devices[0].Notified())
		assert.Equal(mt, "PAL-1", devices[0].Serial().PalletID)
	})

	mt.Run("find by unsupported field", func(mt *mtest.T) {
		repo := &MongoDeviceRepo{coll: mt.Coll}

		_, err := repo.FindByField(context.Background(), "customer_id", "c-1")

		assert.Error(mt, err)
	})

	mt.Run("find by pallet", func(mt *mtest.T) {
		repo := &MongoDeviceRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ose.devices", mtest.FirstBatch,
			bson.D{{Key: "device_id", Value: "d-1"}, {Key: "imei", Value: "861888082667623"}},
			bson.D{{Key: "device_id", Value: "d-2"}, {Key: "imei", Value: "861888082667624"}},
		))

		devices, err := repo.FindByField(context.Background(), FieldPalletID, "PAL-1")

		require.NoError(mt, err)
		assert.Len(mt, devices, 2)
	})

	mt.Run("mark notified", func(mt *mtest.T) {
		repo := &MongoDeviceRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 2},
		))

		n, err := repo.MarkNotified(context.Background(), []string{"d-1", "d-2"}, "h-1", time.Now())

		require.NoError(mt, err)
		assert.Equal(mt, int64(2), n)
	})

	mt.Run("mark notified without ids", func(mt *mtest.T) {
		repo := &MongoDeviceRepo{coll: mt.Coll}

		n, err := repo.MarkNotified(context.Background(), nil, "h-1", time.Now())

		require.NoError(mt, err)
		assert.Zero(mt, n)
	})
}
