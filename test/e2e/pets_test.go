//go:build e2e
// +build e2e

package e2e

import (
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Apurer/petstore-api-tests/internal/conformance"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
	"github.com/Apurer/petstore-api-tests/internal/fixtures"
	"github.com/Apurer/petstore-api-tests/internal/shared/httpstatus"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var _ = Describe("Pet endpoints", func() {
	for _, scenario := range conformance.Scenarios() {
		It(scenario.Description, Label(scenario.Name), func(sctx SpecContext) {
			ctx, cancel := specContext(sctx)
			defer cancel()
			Expect(scenario.Run(ctx, harness)).To(Succeed())
		})
	}

	Context("when the created pet is read back", func() {
		It("keeps the category, photo urls and tag order", func(sctx SpecContext) {
			ctx, cancel := specContext(sctx)
			defer cancel()

			pet := fixtures.NewPet(harness.IDs()).
				WithCategory(2, "Cat").
				WithName("Tabby").
				WithTags(domain.Tag{ID: 3, Name: "striped"}, domain.Tag{ID: 1, Name: "orange"}).
				WithStatus(domain.StatusPending).
				Build()

			res, err := harness.Client().AddPet(ctx, pet)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.ExpectStatus(httpstatus.OK)).To(Succeed())

			created, err := res.DecodePet()
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Category).To(Equal(pet.Category))
			Expect(created.PhotoURLs).To(Equal(pet.PhotoURLs))
			Expect(created.Tags).To(HaveExactElements(pet.Tags[0], pet.Tags[1]))
			Expect(created.Status).To(Equal(domain.StatusPending))
		})
	})

	Context("when the full run is reported", func() {
		It("passes every scenario", func(sctx SpecContext) {
			ctx, cancel := specContext(sctx)
			defer cancel()

			report, err := conformance.Run(ctx, harness, nil)
			Expect(err).NotTo(HaveOccurred())
			for _, res := range report.Results {
				Expect(res.Passed).To(BeTrue(), "%s: %s", res.Name, res.Error)
			}
			Expect(report.Results).To(HaveLen(len(conformance.Scenarios())))
		})
	})
})
