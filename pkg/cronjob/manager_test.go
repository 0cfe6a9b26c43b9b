package cronjob

import (
	"testing"

	. "github.com/bytedance/mockey"
	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/datatypes"
	"k8s.io/utils/ptr"

	"github.com/devmatch-io/devmatch/dao/model"
)

func TestCronJob(t *testing.T) {
	t.Run("newCronJobFunc", func(t *testing.T) {
		manager := NewCronJobManager(nil, nil)
		PatchConvey("newCronJobFunc", t, func() {
			jobName := "rotation-sweeper"
			jobConfig := datatypes.JSON(`{}`)
			jobFunc, err := manager.newCronJobFunc(jobName, model.CronJobTypeRotationSweeper, jobConfig)
			So(err, ShouldBeNil)
			So(jobFunc, ShouldNotBeNil)

			jobFunc, err = manager.newCronJobFunc("unknown", model.CronJobType("unknown"), jobConfig)
			So(err, ShouldNotBeNil)
			So(jobFunc, ShouldBeNil)
		})
	})

	t.Run("prepareUpdateConfig", func(t *testing.T) {
		PatchConvey("prepareUpdateConfig", t, func() {
			manager := NewCronJobManager(nil, nil)
			cur := &model.CronJobConfig{
				Name:    "rotation-sweeper",
				Type:    model.CronJobTypeRotationSweeper,
				Spec:    "@every 1m",
				Suspend: ptr.To(false),
				Config:  datatypes.JSON(`{"test": "test"}`),
			}
			update := manager.prepareUpdateConfig(
				cur,
				ptr.To(model.CronJobTypeRotationSweeper),
				ptr.To("@every 5m"),
				ptr.To(true),
				ptr.To(`{"test": "test"}`),
			)
			So(update, ShouldNotBeNil)
			So(update.Name, ShouldEqual, "rotation-sweeper")
			So(update.Type, ShouldEqual, model.CronJobTypeRotationSweeper)
			So(update.Spec, ShouldEqual, "@every 5m")
			So(*update.Suspend, ShouldEqual, true)
			So(update.Config, ShouldEqual, datatypes.JSON(`{"test": "test"}`))
		})
	})

	t.Run("shouldSuspendJob", func(t *testing.T) {
		PatchConvey("shouldSuspendJob", t, func() {
			manager := NewCronJobManager(nil, nil)
			So(manager.shouldSuspendJob(false, true), ShouldBeTrue)
			So(manager.shouldSuspendJob(true, true), ShouldBeFalse)
			So(manager.shouldSuspendJob(false, false), ShouldBeFalse)
			So(manager.shouldSuspendJob(true, false), ShouldBeFalse)
		})
	})
}
