package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/crrelabs/HireAnyPro/app/repository"
)

const (
	blogPerPage  = 9
	relatedPosts = 3
)

// BlogController serves published blog posts. Content is markdown, returned raw.
type BlogController struct {
	blog repository.BlogRepository
}

func NewBlogController(blog repository.BlogRepository) *BlogController {
	return &BlogController{blog: blog}
}

// HandleBlogList: GET /api/blog?category&page
func (bc *BlogController) HandleBlogList(c *fiber.Ctx) error {
	page, _ := pagination(c, blogPerPage, blogPerPage)
	posts, total, err := bc.blog.GetPublished(c.Query("category"), (page-1)*blogPerPage, blogPerPage)
	if err != nil {
		log.Errorf("[Blog] listing posts failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "blog_failed"})
	}
	totalPages := (total + blogPerPage - 1) / blogPerPage
	return c.JSON(fiber.Map{
		"posts":       posts,
		"total":       total,
		"page":        page,
		"total_pages": totalPages,
	})
}

// HandleBlogPost: GET /api/blog/:slug
func (bc *BlogController) HandleBlogPost(c *fiber.Ctx) error {
	post, err := bc.blog.GetPublishedBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Post not found"})
		}
		log.Errorf("[Blog] loading post failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "blog_failed"})
	}
	related, err := bc.blog.GetRelated(post, relatedPosts)
	if err != nil {
		log.Warnf("[Blog] loading related posts for %s failed: %v", post.Slug, err)
	}
	return c.JSON(fiber.Map{"post": post, "related": related})
}

// HandleBlogCategories: GET /api/blog/categories
func (bc *BlogController) HandleBlogCategories(c *fiber.Ctx) error {
	categories, err := bc.blog.GetCategories()
	if err != nil {
		log.Errorf("[Blog] loading categories failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "blog_failed"})
	}
	return c.JSON(fiber.Map{"categories": categories})
}
