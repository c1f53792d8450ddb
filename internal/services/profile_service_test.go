package services_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/internal/testutil/stubs"
)

var _ = Describe("ProfileService", func() {
	var (
		w    *world
		user *models.User
	)

	BeforeEach(func() {
		w = newWorld()
		user = stubs.NewUserStub().WithHandle("ada_l").WithDisplayName("Ada Lovelace").Get()
		w.users.Seed(user)
	})

	It("looks users up by handle with or without the @", func() {
		found, err := w.profiles.GetByHandle(w.ctx, "@ADA_L")

		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal(user.ID))

		_, err = w.profiles.GetByHandle(w.ctx, "nobody")
		Expect(err).To(MatchError(services.ErrNotFound))
	})

	It("updates only the provided profile fields and invalidates the session", func() {
		updated, err := w.profiles.UpdateProfile(w.ctx, user.ID, models.UpdateProfileRequest{Bio: "first programmer"})

		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Bio).To(Equal("first programmer"))
		Expect(updated.DisplayName).To(Equal("Ada Lovelace"))
		Expect(w.sessions.Invalidated()).To(Equal([]uint{user.ID}))
	})

	It("toggles privacy through settings", func() {
		private := true

		updated, err := w.profiles.UpdateSettings(w.ctx, user.ID, models.UpdateSettingsRequest{IsPrivate: &private, Theme: models.ThemeDark})

		Expect(err).NotTo(HaveOccurred())
		Expect(updated.IsPrivate).To(BeTrue())
		Expect(updated.Theme).To(Equal(models.ThemeDark))
	})

	It("searches by handle or display name", func() {
		results, err := w.profiles.Search(w.ctx, "lovelace")

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Handle).To(Equal("ada_l"))
	})
})
