package controllers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/models"
	"github.com/crrelabs/HireAnyPro/app/repository"
	"github.com/crrelabs/HireAnyPro/internal/pkg/botcheck"
	"github.com/crrelabs/HireAnyPro/internal/pkg/entitlements"
	"github.com/crrelabs/HireAnyPro/internal/pkg/ratelimit"
	"github.com/crrelabs/HireAnyPro/internal/pkg/usercontext"
)

const (
	listingsPerPage    = 20
	maxListingsPerPage = 50
	reviewsLimit       = 50
	categoriesCacheKey = "directory:categories:v1"
	categoriesCacheTTL = 10 * time.Minute
)

// Cache is the subset of the shared cache the directory uses.
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
	Delete(key string) error
}

// DirectoryController serves the public listing, category and review API and
// owner edits.
type DirectoryController struct {
	repos    *repository.Repositories
	detector *botcheck.Detector
	cache    Cache
}

// NewDirectoryController wires the read side. cache may be nil.
func NewDirectoryController(repos *repository.Repositories, detector *botcheck.Detector, cache Cache) *DirectoryController {
	return &DirectoryController{repos: repos, detector: detector, cache: cache}
}

// HandleListings searches the directory: GET /api/listings
func (dc *DirectoryController) HandleListings(c *fiber.Ctx) error {
	page, perPage := pagination(c, listingsPerPage, maxListingsPerPage)
	minRating, _ := strconv.ParseFloat(c.Query("min_rating", "0"), 64)

	listings, total, err := dc.repos.Listing.Search(repository.ListingFilter{
		Query:        c.Query("q"),
		CategorySlug: strings.TrimSpace(c.Query("category")),
		City:         c.Query("city"),
		MinRating:    minRating,
		Offset:       (page - 1) * perPage,
		Limit:        perPage,
	})
	if err != nil {
		log.Errorf("[Directory] listing search failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search_failed"})
	}
	return c.JSON(fiber.Map{
		"listings": entitlements.ProjectAll(listings),
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// HandleListing returns one listing: GET /api/listings/:slug
func (dc *DirectoryController) HandleListing(c *fiber.Ctx) error {
	listing, err := dc.repos.Listing.GetBySlug(c.Params("slug"))
	if err != nil {
		return listingLookupError(c, err)
	}
	view := entitlements.Project(listing)
	body := fiber.Map{"listing": view}
	if listing.Category != nil {
		body["category"] = listing.Category
	}
	return c.JSON(body)
}

// HandleListingReviews lists reviews newest first: GET /api/listings/:slug/reviews
func (dc *DirectoryController) HandleListingReviews(c *fiber.Ctx) error {
	listing, err := dc.repos.Listing.GetBySlug(c.Params("slug"))
	if err != nil {
		return listingLookupError(c, err)
	}
	reviews, err := dc.repos.Review.GetByListingID(listing.ID, reviewsLimit)
	if err != nil {
		log.Errorf("[Directory] loading reviews for %s failed: %v", listing.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reviews_failed"})
	}
	return c.JSON(fiber.Map{"reviews": reviews, "rating": listing.Rating, "review_count": listing.ReviewCount})
}

// HandleCategories lists categories: GET /api/categories
func (dc *DirectoryController) HandleCategories(c *fiber.Ctx) error {
	if dc.cache != nil {
		if cached, err := dc.cache.Get(categoriesCacheKey); err == nil && cached != "" {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(cached)
		}
	}

	categories, err := dc.repos.Category.GetAll()
	if err != nil {
		log.Errorf("[Directory] loading categories failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "categories_failed"})
	}
	payload, err := json.Marshal(fiber.Map{"categories": categories})
	if err != nil {
		return err
	}
	if dc.cache != nil {
		if err := dc.cache.Set(categoriesCacheKey, string(payload), categoriesCacheTTL); err != nil {
			log.Warnf("[Directory] caching categories failed: %v", err)
		}
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

type reviewRequest struct {
	ListingID      string `json:"listingId" validate:"required,max=64"`
	AuthorName     string `json:"authorName" validate:"required,max=128"`
	Rating         int    `json:"rating" validate:"required,min=1,max=5"`
	Comment        string `json:"comment" validate:"max=5000"`
	TurnstileToken string `json:"turnstileToken"`
	Website        string `json:"website"`
}

// HandleReview stores a review: POST /api/review
func (dc *DirectoryController) HandleReview(c *fiber.Ctx) error {
	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if botcheck.Honeypot(req.Website) {
		log.Infof("[Directory] honeypot review dropped from %s", ratelimit.ClientIP(c))
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
	}
	req.AuthorName = strings.TrimSpace(req.AuthorName)
	req.Comment = strings.TrimSpace(req.Comment)
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if !dc.detector.CaptchaPassed(ctx, req.TurnstileToken, ratelimit.ClientIP(c)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "captcha_failed", "message": "Bot verification failed"})
	}

	review := &models.Review{
		ListingID:  strings.TrimSpace(req.ListingID),
		AuthorName: req.AuthorName,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := dc.repos.Review.Create(review); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Listing not found"})
		}
		log.Errorf("[Directory] storing review failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "review_failed"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "review": review})
}

type listingUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Phone       *string `json:"phone" validate:"omitempty,max=64"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Website     *string `json:"website" validate:"omitempty,url,max=255"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	City        *string `json:"city" validate:"omitempty,max=128"`
	State       *string `json:"state" validate:"omitempty,max=32"`
	Zip         *string `json:"zip" validate:"omitempty,max=16"`
	Hours       *string `json:"hours" validate:"omitempty,max=2000"`
	CategoryID  *string `json:"category_id" validate:"omitempty,max=36"`
}

// fields returns the columns to write. Only supplied fields are included.
func (r listingUpdateRequest) fields() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = strings.TrimSpace(*v)
		}
	}
	set("name", r.Name)
	set("description", r.Description)
	set("phone", r.Phone)
	set("email", r.Email)
	set("website", r.Website)
	set("address", r.Address)
	set("city", r.City)
	set("state", r.State)
	set("zip", r.Zip)
	set("hours", r.Hours)
	if r.CategoryID != nil {
		if id := strings.TrimSpace(*r.CategoryID); id != "" {
			out["category_id"] = id
		} else {
			out["category_id"] = nil
		}
	}
	return out
}

// HandleListingUpdate applies an owner's edits: POST /api/listing/update.
// Requires RequireOwnerToken in front.
func (dc *DirectoryController) HandleListingUpdate(c *fiber.Ctx) error {
	owner, ok := usercontext.GetOwner(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req listingUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationMessage(err))
	}
	fields := req.fields()
	if len(fields) == 0 {
		return badRequest(c, "no fields to update")
	}

	listing, err := dc.repos.Listing.GetByID(owner.ListingID)
	if err != nil {
		return listingLookupError(c, err)
	}
	if listing.OwnerID == nil || *listing.OwnerID != owner.ProfileID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "You do not own this listing"})
	}
	active, err := dc.repos.Subscription.HasActive(owner.ProfileID, owner.ListingID)
	if err != nil {
		log.Errorf("[Directory] subscription check failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "update_failed"})
	}
	if !active {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "No active subscription for this listing"})
	}
	if id, ok := fields["category_id"].(string); ok {
		if _, err := dc.repos.Category.GetByID(id); err != nil {
			return badRequest(c, "unknown category")
		}
	}

	if err := dc.repos.Listing.UpdateFields(owner.ListingID, fields); err != nil {
		log.Errorf("[Directory] updating listing %s failed: %v", owner.ListingID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "update_failed"})
	}
	updated, err := dc.repos.Listing.GetByID(owner.ListingID)
	if err != nil {
		return listingLookupError(c, err)
	}
	log.Infof("[Directory] listing %s updated by owner %s", owner.ListingID, owner.ProfileID)
	return c.JSON(fiber.Map{"success": true, "listing": updated})
}

func listingLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Listing not found"})
	}
	log.Errorf("[Directory] listing lookup failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup_failed"})
}
